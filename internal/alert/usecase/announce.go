package usecase

import (
	"context"
	"fmt"
	"time"

	"kofi-alerts/internal/alert"
	"kofi-alerts/pkg/discord"
)

// announceAsync posts the alert to Discord without blocking the inbound stream.
func (uc *implUseCase) announceAsync(a alert.Alert) {
	opts, ok := uc.buildAnnouncement(a)
	if !ok {
		return
	}

	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
		defer cancel()
		if err := uc.discord.SendEmbed(ctx, opts); err != nil {
			uc.l.Warnf(ctx, "alert.usecase.announceAsync: %v", err)
		}
	}()
}

func (uc *implUseCase) buildAnnouncement(a alert.Alert) (discord.MessageOptions, bool) {
	opts := discord.MessageOptions{
		Timestamp: uc.now(),
		Footer:    &discord.EmbedFooter{Text: footerText},
	}

	switch v := a.(type) {
	case alert.DonationAlert:
		opts.Type = discord.MessageTypeSuccess
		opts.Title = "☕ New donation"
		opts.Description = fmt.Sprintf("**%s** sent **%s**", v.Username, v.Amount.StringFixed(2))
		if v.TTS != nil && *v.TTS != "" {
			opts.Fields = append(opts.Fields, buildField("Message", *v.TTS, false))
		}
		if v.Image != nil {
			opts.Thumbnail = &discord.EmbedThumbnail{URL: *v.Image}
		}
	case alert.GoalAlert:
		if !v.Goal.ShowGoal {
			return opts, false
		}
		opts.Color = discord.ColorPurple
		opts.Title = "🎯 Goal updated"
		opts.Description = fmt.Sprintf("**%s** is at **%s%%**", v.Goal.Title, formatFloat(v.Goal.ProgressPercentage))
		target := "N/A"
		if v.Goal.GoalAmount != nil {
			target = *v.Goal.GoalAmount + " " + v.Goal.Currency
		}
		opts.Fields = append(opts.Fields, buildField("Target", target, true))
	case alert.ActivityAlert:
		activityAnnouncement(&opts, v.Activity)
	default:
		return opts, false
	}
	return opts, true
}

func activityAnnouncement(opts *discord.MessageOptions, act alert.Activity) {
	b := act.Base()
	opts.Color = discord.ColorOrange
	opts.Description = fmt.Sprintf("**%s** · %s", b.UserName, formatAmount(b))
	opts.Fields = append(opts.Fields, buildField("Transaction", b.TransactionID, true))
	if b.TwitchUsername != nil {
		opts.Fields = append(opts.Fields, buildField("Twitch", *b.TwitchUsername, true))
	}

	switch v := act.(type) {
	case alert.ShopActivity:
		opts.Title = "🛍️ Shop order"
		opts.Fields = append(opts.Fields, buildField("Item", v.ShopItemName, false))
	case alert.CommissionActivity:
		opts.Title = "🎨 Commission"
		opts.Fields = append(opts.Fields, buildField("Item", v.ShopItemName, false))
	case alert.MembershipActivity:
		opts.Title = "⭐ Membership"
		opts.Fields = append(opts.Fields, buildField("Tier", v.MembershipTierName, false))
	case alert.DonationActivity:
		opts.Title = "☕ Donation"
		if b.IsMessagePublic && v.Message != "" {
			opts.Fields = append(opts.Fields, buildField("Message", v.Message, false))
		}
	}
	if b.IsTestActivity {
		opts.Title += " (test)"
	}
	opts.Timestamp = activityTime(b, opts.Timestamp)
}

// activityTime prefers the upstream timestamp (unix seconds) when present.
func activityTime(b alert.ActivityBase, fallback time.Time) time.Time {
	if b.Timestamp <= 0 {
		return fallback
	}
	return time.Unix(b.Timestamp, 0)
}
