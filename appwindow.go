package wry

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crgimenes/wry/dl"
)

// AppOptions configures an AppWindow.
type AppOptions struct {
	Library     string      // backend path; LibraryPath when empty
	LoadOptions []dl.Option // forwarded to dl.Open

	// Addr is where the page server listens, 127.0.0.1:0 when empty.
	Addr string

	Handler http.Handler

	// OnReady receives the server URL after the listener is bound and
	// before the window opens.
	OnReady func(url string)
}

// AppWindow serves opts.Handler on a local listener and shows it in a
// backend window, blocking until the window is closed. The server and the
// backend are both released before it returns.
func AppWindow(opts AppOptions) error {
	if opts.Handler == nil {
		return errors.New("wry: AppOptions.Handler must not be nil")
	}
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("wry: listen %s: %w", opts.Addr, err)
	}
	base := baseURL(ln.Addr().(*net.TCPAddr))

	b, err := Open(opts.Library, opts.LoadOptions...)
	if err != nil {
		return errors.Join(err, ln.Close())
	}

	srv := &http.Server{Handler: opts.Handler, ReadHeaderTimeout: 10 * time.Second}
	var g errgroup.Group
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("wry: serve %s: %w", base, err)
		}
		return nil
	})

	if opts.OnReady != nil {
		opts.OnReady(base)
	}

	runErr := b.CreateAndRun(base)

	// Window closed; shut down the server.
	closeErr := srv.Close()
	return errors.Join(runErr, closeErr, g.Wait(), b.Close())
}

func baseURL(addr *net.TCPAddr) string {
	host := "127.0.0.1"
	if addr.IP != nil && !addr.IP.IsUnspecified() {
		host = addr.IP.String()
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(addr.Port))
}
