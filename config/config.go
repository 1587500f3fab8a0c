// Package config assembles the trade request and credentials from CLI
// arguments and the settings file. Nothing here is read from ambient
// globals after Get returns.
package config

import (
	"flag"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"gopkg.in/ini.v1"
)

const (
	DefaultSettingsPath = "settings.conf"
	DefaultWarnAfter    = 3600 * time.Second

	// Reference Bittrex values; overridable via the [EXCHANGE] section.
	DefaultBaseURL      = "https://api.bittrex.com/api/v1.1"
	DefaultFeeRate      = "0.0025"
	DefaultMinNotional  = "0.0005"
	DefaultPollInterval = time.Minute
)

const usage = "usage: bittrex-dca-bot [flags] <order_side> <amount> <market_currency> <base_currency>"

// Request is a validated trade request.
type Request struct {
	Side      domain.Side
	Amount    decimal.Decimal
	Pair      domain.Pair
	WarnAfter time.Duration
}

// ExchangeParams carries exchange-specific tunables. The fee rate and the
// minimum notional are Bittrex fee-tier constants, not universal truths,
// so both stay configurable.
type ExchangeParams struct {
	BaseURL      string
	FeeRate      decimal.Decimal
	MinNotional  decimal.Decimal
	PollInterval time.Duration
}

// Settings holds credentials and exchange parameters from the settings file.
type Settings struct {
	BittrexKey    string
	BittrexSecret string

	SNSTopic           string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	Exchange ExchangeParams
}

// Config is the fully resolved program configuration.
type Config struct {
	Request      Request
	Settings     Settings
	SettingsPath string
	// Setup requests the interactive settings wizard instead of trading.
	Setup bool
}

// Get parses CLI flags, positional arguments and the settings file.
func Get() (*Config, error) {
	settingsPath := flag.String("settings", DefaultSettingsPath, "path to the settings file")
	warnAfter := flag.Int("warn_after", int(DefaultWarnAfter.Seconds()), "seconds to wait before alerting that an order isn't done")
	setup := flag.Bool("setup", false, "run the interactive settings wizard and exit")
	flag.Parse()

	if *setup {
		return &Config{Setup: true, SettingsPath: *settingsPath}, nil
	}

	request, err := parseArgs(flag.Args(), *warnAfter)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(*settingsPath)
	if err != nil {
		return nil, err
	}

	return &Config{
		Request:      request,
		Settings:     settings,
		SettingsPath: *settingsPath,
	}, nil
}

func parseArgs(args []string, warnAfterSeconds int) (Request, error) {
	if len(args) != 4 {
		return Request{}, errors.New(usage)
	}

	side, err := domain.ParseSide(args[0])
	if err != nil {
		return Request{}, err
	}

	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return Request{}, errors.Wrapf(err, "invalid amount %q", args[1])
	}
	if !amount.IsPositive() {
		return Request{}, errors.Errorf("amount must be positive, got %s", amount.String())
	}

	if warnAfterSeconds <= 0 {
		return Request{}, errors.Errorf("-warn_after must be positive, got %d", warnAfterSeconds)
	}

	return Request{
		Side:      side,
		Amount:    amount,
		Pair:      domain.Pair{Market: args[2], Base: args[3]},
		WarnAfter: time.Duration(warnAfterSeconds) * time.Second,
	}, nil
}

// LoadSettings reads the INI settings file. Every [API_KEYS] and [AWS] key
// is mandatory; the [EXCHANGE] section is optional and defaults to the
// reference Bittrex constants.
func LoadSettings(path string) (Settings, error) {
	f, err := ini.Load(path)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "failed to read settings file %s", path)
	}

	var s Settings
	required := []struct {
		section, key string
		dst          *string
	}{
		{"API_KEYS", "BITTREX_KEY", &s.BittrexKey},
		{"API_KEYS", "BITTREX_SECRET", &s.BittrexSecret},
		{"AWS", "SNS_TOPIC", &s.SNSTopic},
		{"AWS", "AWS_ACCESS_KEY_ID", &s.AWSAccessKeyID},
		{"AWS", "AWS_SECRET_ACCESS_KEY", &s.AWSSecretAccessKey},
	}
	for _, r := range required {
		v := f.Section(r.section).Key(r.key).String()
		if v == "" {
			return Settings{}, errors.Errorf("missing required setting [%s] %s in %s", r.section, r.key, path)
		}
		*r.dst = v
	}

	s.Exchange, err = loadExchangeParams(f.Section("EXCHANGE"))
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

func loadExchangeParams(sec *ini.Section) (ExchangeParams, error) {
	params := ExchangeParams{
		BaseURL:      DefaultBaseURL,
		FeeRate:      decimal.RequireFromString(DefaultFeeRate),
		MinNotional:  decimal.RequireFromString(DefaultMinNotional),
		PollInterval: DefaultPollInterval,
	}

	if v := sec.Key("BASE_URL").String(); v != "" {
		params.BaseURL = v
	}
	if v := sec.Key("FEE_RATE").String(); v != "" {
		feeRate, err := decimal.NewFromString(v)
		if err != nil {
			return ExchangeParams{}, errors.Wrapf(err, "incorrect FEE_RATE %q", v)
		}
		if feeRate.IsNegative() || feeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return ExchangeParams{}, errors.Errorf("FEE_RATE must be in [0, 1), got %s", feeRate.String())
		}
		params.FeeRate = feeRate
	}
	if v := sec.Key("MIN_NOTIONAL").String(); v != "" {
		minNotional, err := decimal.NewFromString(v)
		if err != nil {
			return ExchangeParams{}, errors.Wrapf(err, "incorrect MIN_NOTIONAL %q", v)
		}
		if minNotional.IsNegative() {
			return ExchangeParams{}, errors.Errorf("MIN_NOTIONAL must not be negative, got %s", minNotional.String())
		}
		params.MinNotional = minNotional
	}
	if v := sec.Key("POLL_INTERVAL").String(); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return ExchangeParams{}, errors.Wrapf(err, "incorrect POLL_INTERVAL %q", v)
		}
		if interval <= 0 {
			return ExchangeParams{}, errors.Errorf("POLL_INTERVAL must be positive, got %s", interval)
		}
		params.PollInterval = interval
	}

	return params, nil
}
