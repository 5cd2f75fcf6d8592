package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding file values,
// e.g. STOREFRONT_JWT_SECRET overrides jwt.secret.
const EnvPrefix = "STOREFRONT"

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper loads configuration from the given file path and returns a Viper-backed Config.
//
// The config file type is inferred by Viper from the filename extension. The file is
// watched and reloaded on change; environment variables always win over file values.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()

	filename := path.Base(pathFile)
	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(filename, path.Ext(filename)))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed, keeping previous values", "path", pathFile, "error", err)
			return
		}
		slog.Info("config reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory and returns a Viper-backed Config.
// configType should be a format supported by Viper (e.g. "yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetInt returns the value for key as int.
func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

// GetInt64 returns the value for key as int64.
func (vc *Viper) GetInt64(key string) int64 {
	return vc.v.GetInt64(key)
}

// GetFloat64 returns the value for key as float64.
func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetMinute returns the value for key as minutes.
func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetBinary returns the value for key decoded from base64.
func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.v.GetString(key))
	if err != nil {
		return nil
	}

	return data
}

// GetArray returns the value for key split by commas.
func (vc *Viper) GetArray(key string) []string {
	return vc.GetList(key, ",")
}

// GetList returns the value for key split by sep, trimmed, without empty elements.
func (vc *Viper) GetList(key, sep string) []string {
	return lo.Compact(lo.Map(strings.Split(vc.v.GetString(key), sep), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// GetMap returns the value for key parsed from "k:v,k:v" pairs. Pairs without ":" are skipped.
func (vc *Viper) GetMap(key string) map[string]string {
	pairs := lo.FilterMap(vc.GetArray(key), func(pair string, _ int) (lo.Tuple2[string, string], bool) {
		k, v, ok := strings.Cut(pair, ":")
		return lo.T2(strings.TrimSpace(k), strings.TrimSpace(v)), ok
	})

	return lo.SliceToMap(pairs, func(t lo.Tuple2[string, string]) (string, string) {
		return t.A, t.B
	})
}

// Close implements io.Closer for interface compatibility.
func (vc *Viper) Close() error {
	return nil
}
