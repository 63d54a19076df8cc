// Command ecolink is a terminal client for the collection service. The token from
// login is kept in the data folder so later invocations reuse it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/collections"
	"github.com/jrsteele09/ecolink/geo"
	"github.com/jrsteele09/ecolink/internal/config"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/jrsteele09/ecolink/internal/logging"
	"github.com/jrsteele09/ecolink/session"
	"github.com/jrsteele09/ecolink/tokenstore"
)

const usage = `usage: ecolink <command> [flags]

commands:
  login  -u <email> -p <password>
  logout
  whoami
  points [-lat <latitude> -lng <longitude>] [-q <filter>]
`

var errUsage = errors.New("invalid usage")

func main() {
	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())

	if err := run(context.Background(), c, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// client bundles what every command needs
type client struct {
	api   *apiclient.Client
	store *session.Store
	cfg   config.Config
}

func newClient(c config.Config) (*client, error) {
	api, err := apiclient.New(c.GetAPIBaseURL(), nil,
		apiclient.WithHTTPClient(&http.Client{Timeout: c.GetAPITimeout()}))
	if err != nil {
		return nil, err
	}
	tokens, err := tokenstore.NewFile(filepath.Join(c.GetDataFolder(), "tokens.json"), c.GetTokenStoreKey())
	if err != nil {
		return nil, err
	}
	store := session.New(api, tokens, session.DefaultKey)
	return &client{
		api:   api.WithTokens(store),
		store: store,
		cfg:   c,
	}, nil
}

func run(ctx context.Context, c config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cl, err := newClient(c)
	if err != nil {
		return err
	}

	switch args[0] {
	case "login":
		return cl.login(ctx, args[1:], out)
	case "logout":
		cl.store.Logout()
		fmt.Fprintln(out, "Sessão encerrada.")
		return nil
	case "whoami":
		return cl.whoami(out)
	case "points":
		return cl.points(ctx, args[1:], out)
	default:
		return errUsage
	}
}

func (cl *client) login(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	user := fs.String("u", "", "email")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil || *user == "" || *password == "" {
		return errUsage
	}

	if err := cl.store.Login(ctx, *user, *password); err != nil {
		return err
	}
	u := cl.store.CurrentUser()
	fmt.Fprintf(out, "Olá, %s!\n", u.Name)
	return nil
}

// whoami reports on the persisted token. The identity itself is only known to the
// process that logged in.
func (cl *client) whoami(out io.Writer) error {
	err := cl.store.Restore()
	if errors.Is(err, apperrors.ErrTokenExpired) {
		fmt.Fprintln(out, "Sessão expirada. Faça login novamente.")
		return nil
	}
	if err != nil {
		return err
	}
	tok, _ := cl.store.Token()
	switch {
	case tok == nil:
		fmt.Fprintln(out, "Não autenticado.")
	case tok.Expiry.IsZero():
		fmt.Fprintln(out, "Token salvo.")
	default:
		fmt.Fprintf(out, "Token salvo, expira em %s.\n", tok.Expiry.Local().Format(time.RFC3339))
	}
	return nil
}

func (cl *client) points(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("points", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	query := fs.String("q", "", "filter by address or material")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := cl.store.Restore(); err != nil && !errors.Is(err, apperrors.ErrTokenExpired) {
		return err
	}

	locator := geo.Locator(geo.LocatorFunc(func(context.Context) (geo.Coordinates, error) {
		return geo.Coordinates{}, apperrors.ErrPositionUnavailable
	}))
	if isSet(fs, "lat") && isSet(fs, "lng") {
		locator = geo.Fixed(geo.Coordinates{Latitude: *lat, Longitude: *lng})
	}
	accessor := geo.NewAccessor(locator, cl.cfg.GetGeolocationTimeout())
	accessor.Activate(ctx)
	origin, ok := accessor.Coordinates()
	if msg := accessor.Message(); msg != "" {
		fmt.Fprintln(out, msg)
	}

	svc := collections.NewService(cl.api, collections.WithPageLimit(cl.cfg.GetCollectionsPageLimit()))
	views, err := svc.NearbyPoints(ctx, origin, ok)
	if err != nil {
		return err
	}
	views = collections.Filter(views, *query)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PONTO\tENDEREÇO\tDISTÂNCIA\tMATERIAIS")
	for _, v := range views {
		materials := "-"
		if len(v.Materials) > 0 {
			materials = strings.Join(v.Materials, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Name, v.Address, v.Distance, materials)
	}
	return tw.Flush()
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
