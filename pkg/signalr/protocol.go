package signalr

import (
	"bytes"
	"encoding/json"

	"github.com/friendsofgo/errors"
)

var (
	handshakeFrame = mustFrame(handshakeRequest{Protocol: "json", Version: 1})
	pingFrame      = mustFrame(hubMessage{Type: messagePing})
)

func mustFrame(v any) []byte {
	b, err := frame(v)
	if err != nil {
		panic(err)
	}
	return b
}

// frame encodes v as a JSON record terminated by the record separator.
func frame(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "signalr: encode message")
	}
	return append(b, recordSeparator), nil
}

// splitRecords returns the complete records in buf and the unterminated remainder.
func splitRecords(buf []byte) (records [][]byte, rest []byte) {
	for {
		i := bytes.IndexByte(buf, recordSeparator)
		if i < 0 {
			return records, buf
		}
		if i > 0 {
			records = append(records, buf[:i])
		}
		buf = buf[i+1:]
	}
}

func parseHandshake(record []byte) error {
	var resp handshakeResponse
	if err := json.Unmarshal(record, &resp); err != nil {
		return errors.Wrap(err, "signalr: decode handshake response")
	}
	if resp.Error != "" {
		return errors.Wrap(ErrHandshakeRejected, resp.Error)
	}
	return nil
}
