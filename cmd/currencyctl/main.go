package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	currency "github.com/goliatone/go-currency"
)

const usage = `usage: currencyctl [global flags] <command> [flags]

commands:
  resolve                         print the user currency and how it was detected
  format  -amount N [-currency C] format an amount (default: user currency)
  parse   -text S -currency C     parse a formatted amount
  convert -amount N -from C [-to C]
  smart   -amount N [-base C]     convert from base to the user currency
  set     -currency C             store an explicit choice
  reset                           forget the stored choice
  list    [-region R]             list supported currencies
`

type globalFlags struct {
	env  string
	data string
	tz   string
	lang string
	lat  string
	lon  string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		reportError(err)
	}
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "currencyctl: %v\n", err)
	os.Exit(1)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("currencyctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	var g globalFlags
	global.StringVar(&g.env, "env", "", "path to an env file (default .env when present)")
	global.StringVar(&g.data, "data", "", "JSON or YAML currency data merged over the built-in data")
	global.StringVar(&g.tz, "tz", "", "override the detected IANA timezone")
	global.StringVar(&g.lang, "lang", "", "override the detected language tag")
	global.StringVar(&g.lat, "lat", "", "latitude for geolocation")
	global.StringVar(&g.lon, "lon", "", "longitude for geolocation")

	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if global.NArg() == 0 {
		return errors.New(usage)
	}

	cfg, err := loadSettings(g.env)
	if err != nil {
		return err
	}
	if g.data != "" {
		cfg.DataPath = g.data
	}

	signals, err := buildSignals(g)
	if err != nil {
		return err
	}

	logger := currency.NewLogger()
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := currency.New(
		currency.WithDataPath(cfg.DataPath),
		currency.WithStore(store),
		currency.WithSignals(signals),
		currency.WithGeocoder(currency.NewNearestCityGeocoder()),
		currency.WithLogger(logger),
		currency.WithDefaultCountry(cfg.DefaultCountry),
		currency.WithGeolocationTimeout(cfg.GeoTimeout),
		currency.WithPreferenceKey(cfg.PreferenceKey),
	)
	if err != nil {
		return err
	}
	defer engine.Close()

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "resolve":
		return runResolve(ctx, engine, out)
	case "format":
		return runFormat(ctx, engine, rest, out)
	case "parse":
		return runParse(engine, rest, out)
	case "convert":
		return runConvert(ctx, engine, rest, out)
	case "smart":
		return runSmart(ctx, engine, rest, out)
	case "set":
		return runSet(engine, rest, out)
	case "reset":
		return runReset(ctx, engine, out)
	case "list":
		return runList(engine, rest, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func buildSignals(g globalFlags) (currency.Signals, error) {
	signals := overrideSignals{
		base:     currency.SystemSignals{},
		timezone: g.tz,
		language: g.lang,
	}
	if g.lat == "" && g.lon == "" {
		return signals, nil
	}

	lat, err := strconv.ParseFloat(g.lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -lat %q: %w", g.lat, err)
	}
	lon, err := strconv.ParseFloat(g.lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -lon %q: %w", g.lon, err)
	}
	pos := currency.Position{Latitude: lat, Longitude: lon}
	if !pos.Valid() {
		return nil, fmt.Errorf("position %v,%v out of range", lat, lon)
	}
	signals.position = &pos
	return signals, nil
}

// overrideSignals layers command line values over the process environment.
type overrideSignals struct {
	base     currency.Signals
	timezone string
	language string
	position *currency.Position
}

func (s overrideSignals) Position(ctx context.Context) (currency.Position, error) {
	if s.position != nil {
		return *s.position, nil
	}
	return s.base.Position(ctx)
}

func (s overrideSignals) Timezone() string {
	if s.timezone != "" {
		return s.timezone
	}
	return s.base.Timezone()
}

func (s overrideSignals) LanguageTag() string {
	if s.language != "" {
		return s.language
	}
	return s.base.LanguageTag()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runResolve(ctx context.Context, engine *currency.Engine, out io.Writer) error {
	code := engine.UserCurrency(ctx)
	detection := engine.DetectCountry(ctx)
	fmt.Fprintf(out, "currency: %s\n", code)
	fmt.Fprintf(out, "country:  %s (%s)\n", detection.Country, detection.Source)
	return nil
}

func runFormat(ctx context.Context, engine *currency.Engine, args []string, out io.Writer) error {
	fs := newFlagSet("format")
	amount := fs.Float64("amount", 0, "amount to format")
	code := fs.String("currency", "", "currency code (default: user currency)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprintln(out, engine.FormatCurrency(ctx, *amount, *code))
	return nil
}

func runParse(engine *currency.Engine, args []string, out io.Writer) error {
	fs := newFlagSet("parse")
	text := fs.String("text", "", "formatted amount")
	code := fs.String("currency", "", "currency code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" {
		return errors.New("parse: -currency is required")
	}
	value, err := engine.Parse(*text, *code)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strconv.FormatFloat(value, 'f', -1, 64))
	return nil
}

func runConvert(ctx context.Context, engine *currency.Engine, args []string, out io.Writer) error {
	fs := newFlagSet("convert")
	amount := fs.Float64("amount", 0, "amount to convert")
	from := fs.String("from", "", "source currency")
	to := fs.String("to", "", "target currency (default: user currency)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" {
		return errors.New("convert: -from is required")
	}
	fmt.Fprintln(out, engine.ConvertAndFormat(ctx, *amount, *from, *to))
	return nil
}

func runSmart(ctx context.Context, engine *currency.Engine, args []string, out io.Writer) error {
	fs := newFlagSet("smart")
	amount := fs.Float64("amount", 0, "amount in the base currency")
	base := fs.String("base", "", "currency the amount is stored in (default: rate table base)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprintln(out, engine.SmartFormatCurrency(ctx, *amount, *base))
	return nil
}

func runSet(engine *currency.Engine, args []string, out io.Writer) error {
	fs := newFlagSet("set")
	code := fs.String("currency", "", "currency code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !engine.SetUserCurrency(*code) {
		return fmt.Errorf("set: %w: %q", currency.ErrUnknownCurrency, *code)
	}
	fmt.Fprintf(out, "currency: %s\n", engine.UserCurrency(context.Background()))
	return nil
}

func runReset(ctx context.Context, engine *currency.Engine, out io.Writer) error {
	if err := engine.ResetUserCurrency(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Fprintln(out, "preference cleared")
	return nil
}

func runList(engine *currency.Engine, args []string, out io.Writer) error {
	fs := newFlagSet("list")
	region := fs.String("region", "", "only list currencies of this region")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries := engine.SupportedCurrencies()
	if *region != "" {
		entries = engine.CurrenciesByRegion(currency.Region(*region))
		if len(entries) == 0 {
			return fmt.Errorf("list: no currencies in region %q (known: %v)", *region, engine.Regions())
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tSYMBOL\tNAME\tREGION\tSAMPLE")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", entry.Code, entry.Symbol, entry.Name, entry.Region, engine.Format(1234.5, entry.Code))
	}
	return w.Flush()
}
