package serve

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"time"

	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/lookup"
	"github.com/brimdata/airindex/pkg/charm"
	"github.com/brimdata/airindex/service"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var Cmd = &charm.Spec{
	Name:  "serve",
	Usage: "serve -db prefix [-l addr]",
	Short: "serve lookups over HTTP",
	Long: `
The serve command opens the index under the -db prefix and answers
GET /lookup/{key} with the key's position as JSON.  Lookup counters are
available at /stats and, with cache counters, as Prometheus metrics at
/metrics.`,
	New: New,
}

type Command struct {
	*root.Command
	db         string
	listenAddr string
	noCache    bool
	origins    []string
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.db, "db", "", "location of the index")
	f.StringVar(&c.listenAddr, "l", ":9867", "[addr]:port to listen on")
	f.BoolVar(&c.noCache, "no_cache", false, "read storage directly, bypassing the cache")
	f.Func("cors.origin", "CORS allowed origin (may be repeated)", func(s string) error {
		c.origins = append(c.origins, s)
		return nil
	})
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	prefix, err := root.ParsePrefix(c.db)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	engine, err := c.StorageFlags.Open(ctx, c.noCache, reg)
	if err != nil {
		return err
	}
	defer engine.Close()
	index, err := lookup.Open(ctx, engine, prefix)
	if err != nil {
		return err
	}
	if err := index.Register(reg); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", c.listenAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler: service.NewHandler(service.Config{
			Index:              index,
			Registry:           reg,
			Logger:             c.Logger,
			CORSAllowedOrigins: c.origins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.Logger.Info("Listening", zap.Stringer("addr", ln.Addr()), zap.Stringer("prefix", prefix))
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
