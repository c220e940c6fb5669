package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Translated strings used in outbound notification emails, keyed by
// locale. English is the fallback for locales we do not carry.
var translations = map[string]map[string]string{
	"en": {
		"booking_scheduled_subject": "Your meeting has been scheduled",
		"booking_confirmed_subject": "Your meeting has been confirmed",
		"booking_scheduled_body":    "Your meeting \"%s\" is scheduled for %s.",
		"booking_confirmed_body":    "Your meeting \"%s\" on %s has been confirmed.",
	},
	"fr": {
		"booking_scheduled_subject": "Votre rendez-vous a été planifié",
		"booking_confirmed_subject": "Votre rendez-vous a été confirmé",
		"booking_scheduled_body":    "Votre rendez-vous « %s » est prévu le %s.",
		"booking_confirmed_body":    "Votre rendez-vous « %s » du %s a été confirmé.",
	},
	"de": {
		"booking_scheduled_subject": "Ihr Termin wurde geplant",
		"booking_confirmed_subject": "Ihr Termin wurde bestätigt",
		"booking_scheduled_body":    "Ihr Termin „%s“ ist für %s geplant.",
		"booking_confirmed_body":    "Ihr Termin „%s“ am %s wurde bestätigt.",
	},
}

// GetTranslation resolves the string table for a locale, caching the
// result in redis so attendee fan-out does not rebuild it per request.
func GetTranslation(ctx context.Context, locale string) (map[string]string, error) {
	if locale == "" {
		locale = "en"
	}
	rd := GetRedisClient()
	cacheKey := fmt.Sprintf("i18n:%s", locale)
	if rd != nil {
		if val, err := rd.Get(ctx, cacheKey).Result(); err == nil && val != "" {
			var t map[string]string
			if err := json.Unmarshal([]byte(val), &t); err == nil {
				return t, nil
			}
		}
	}
	t, ok := translations[locale]
	if !ok {
		t = translations["en"]
	}
	if rd != nil {
		b, _ := json.Marshal(t)
		if err := rd.Set(ctx, cacheKey, string(b), 24*time.Hour).Err(); err != nil {
			log.Printf("[i18n] Error caching locale %s: %s\n", locale, err.Error())
		}
	}
	return t, nil
}
