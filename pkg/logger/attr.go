package logger

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under the key "error". Nil errors produce an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
// Empty ids produce an empty Attr.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Email records a customer email under the key "email". The local part is
// masked so logs never carry the full address.
func Email(email string) slog.Attr {
	return slog.String("email", MaskEmail(email))
}

// GemID records a generated plan identifier under the key "gem_id".
func GemID(id string) slog.Attr {
	return slog.String("gem_id", id)
}

// OrderID records a commerce order identifier under the key "order_id".
func OrderID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("order_id", id)
}

// Plan records a subscription tier under the key "plan".
func Plan(name string) slog.Attr {
	return slog.String("plan", name)
}

// Duration records elapsed time since start under the key "duration".
func Duration(start time.Time) slog.Attr {
	return slog.Duration("duration", time.Since(start))
}

// MaskEmail keeps the first rune of the local part and the domain:
// "ana@school.cl" becomes "a***@school.cl".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		if email == "" {
			return ""
		}
		return "***"
	}
	_, size := utf8.DecodeRuneInString(local)
	return local[:size] + "***@" + domain
}

// Event records a domain event name under the key "event", such as a
// webhook event type.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
