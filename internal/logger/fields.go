package logger

import (
	"time"

	"go.uber.org/zap"
)

func CampaignID(v string) zap.Field { return zap.String("campaign_id", v) }
func ContactID(v string) zap.Field  { return zap.String("contact_id", v) }
func ConfigID(v string) zap.Field   { return zap.String("email_config_id", v) }
func UserID(v string) zap.Field     { return zap.String("user_id", v) }
func Email(v string) zap.Field      { return zap.String("email", v) }
func RequestID(v string) zap.Field  { return zap.String("request_id", v) }
func Op(v string) zap.Field         { return zap.String("op", v) }
func Count(v int) zap.Field         { return zap.Int("count", v) }
func Err(err error) zap.Field       { return zap.Error(err) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
