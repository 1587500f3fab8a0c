// Package setup provides the interactive settings wizard.
package setup

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/config"
	"gopkg.in/ini.v1"
)

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	doneStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

// Run launches the terminal wizard and writes the settings file to path.
func Run(path string) error {
	var (
		bittrexKey    string
		bittrexSecret string

		snsTopic  string
		awsKeyID  string
		awsSecret string

		feeRate      = config.DefaultFeeRate
		minNotional  = config.DefaultMinNotional
		pollInterval = config.DefaultPollInterval.String()

		confirm bool
	)

	fmt.Println(headerStyle.Render("bittrex-dca-bot settings"))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bittrex API key").
				Value(&bittrexKey).
				Validate(notEmpty("Bittrex API key")),
			huh.NewInput().
				Title("Bittrex API secret").
				EchoMode(huh.EchoModePassword).
				Value(&bittrexSecret).
				Validate(notEmpty("Bittrex API secret")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SNS topic ARN").
				Value(&snsTopic).
				Validate(notEmpty("SNS topic ARN")),
			huh.NewInput().
				Title("AWS access key id").
				Value(&awsKeyID).
				Validate(notEmpty("AWS access key id")),
			huh.NewInput().
				Title("AWS secret access key").
				EchoMode(huh.EchoModePassword).
				Value(&awsSecret).
				Validate(notEmpty("AWS secret access key")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Exchange fee rate").
				Description("flat taker fee, e.g. 0.0025 for 0.25%").
				Value(&feeRate).
				Validate(validDecimal),
			huh.NewInput().
				Title("Minimum order value").
				Description("in the base currency, e.g. 0.0005 BTC").
				Value(&minNotional).
				Validate(validDecimal),
			huh.NewInput().
				Title("Order status poll interval").
				Value(&pollInterval).
				Validate(validDuration),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write settings to %s?", path)).
				Value(&confirm),
		),
	)

	if err := form.Run(); err != nil {
		return errors.Wrap(err, "settings wizard aborted")
	}
	if !confirm {
		return errors.New("settings not saved")
	}

	f := ini.Empty()
	f.Section("API_KEYS").Key("BITTREX_KEY").SetValue(bittrexKey)
	f.Section("API_KEYS").Key("BITTREX_SECRET").SetValue(bittrexSecret)
	f.Section("AWS").Key("SNS_TOPIC").SetValue(snsTopic)
	f.Section("AWS").Key("AWS_ACCESS_KEY_ID").SetValue(awsKeyID)
	f.Section("AWS").Key("AWS_SECRET_ACCESS_KEY").SetValue(awsSecret)
	f.Section("EXCHANGE").Key("FEE_RATE").SetValue(feeRate)
	f.Section("EXCHANGE").Key("MIN_NOTIONAL").SetValue(minNotional)
	f.Section("EXCHANGE").Key("POLL_INTERVAL").SetValue(pollInterval)

	if err := f.SaveTo(path); err != nil {
		return errors.Wrapf(err, "failed to write settings to %s", path)
	}

	fmt.Println(doneStyle.Render(fmt.Sprintf("Settings saved to %s", path)))
	return nil
}

func notEmpty(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		return nil
	}
}

func validDecimal(s string) error {
	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	return nil
}

func validDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration like 60s or 1m")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
