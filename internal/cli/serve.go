package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/httputil"
	"github.com/matzehuels/modkit/pkg/json"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		f    loadFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mod set over a read-only HTTP API",
		Long: `Load the mod set once and serve it as JSON:

  GET  /healthz                   liveness and mod count
  GET  /mods                      every mod with its availability
  GET  /mods/{id}                 one mod with its dependents
  GET  /mods/{id}/dependencies    transitive dependencies
  GET  /mods/{id}/dependents      transitive dependents
  POST /order                     load order for ["id", ...] or {"mods": [...]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			s, res, err := c.loadMods(ctx, f)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg().Server.Addr
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newAPI(s, res).routes(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(_ net.Listener) context.Context { return ctx },
			}

			done := make(chan error, 1)
			go func() {
				logger.Info("Listening", "addr", addr, "mods", res.Registry.Len())
				done <- srv.ListenAndServe()
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-done; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// =============================================================================
// API
// =============================================================================

// api serves one loaded mod set.
type api struct {
	scanner *modinfo.Scanner
	res     *modinfo.Result
}

func newAPI(s *modinfo.Scanner, res *modinfo.Result) *api {
	return &api{scanner: s, res: res}
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(httputil.RequestID, httputil.Observe)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, errs.New(errs.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	r.Get("/healthz", a.health)
	r.Get("/mods", a.listMods)
	r.Route("/mods/{id}", func(r chi.Router) {
		r.Get("/", a.getMod)
		r.Get("/dependencies", a.related(a.res.Tree.DependenciesOf))
		r.Get("/dependents", a.related(a.res.Tree.DependentsOf))
	})
	r.Post("/order", a.order)
	return r
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"mods":   a.res.Registry.Len(),
	})
}

func (a *api) listMods(w http.ResponseWriter, r *http.Request) {
	mods := a.res.Registry.Sorted()
	views := make([]modView, len(mods))
	for i, m := range mods {
		views[i] = modView{info: m, res: a.res}
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

// lookup resolves the {id} URL parameter to a registered mod.
func (a *api) lookup(r *http.Request) (*modinfo.Info, error) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateModID(id); err != nil {
		return nil, err
	}
	m, ok := a.res.Registry.Get(id)
	if !ok {
		return nil, errs.New(errs.ErrCodeModNotFound, "mod %q is not installed", id)
	}
	return m, nil
}

func (a *api) getMod(w http.ResponseWriter, r *http.Request) {
	m, err := a.lookup(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, modView{info: m, res: a.res, detailed: true})
}

func (a *api) related(list func(string) []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := a.lookup(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, list(m.ID))
	}
}

func (a *api) order(w http.ResponseWriter, r *http.Request) {
	data, err := httputil.ReadBody(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	selected, err := decodeSelection(data)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	order, err := a.scanner.Resolve(r.Context(), a.res, selected)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"order": order})
}

// decodeSelection reads a list of mod ids, given either as a bare array or
// as the "mods" member of an object.
func decodeSelection(data []byte) ([]string, error) {
	r := json.NewReader(data, json.WithPath("request body"), json.WithStrict(true))
	var ids []string
	switch {
	case r.TestArray():
		if err := r.Read(&ids); err != nil {
			return nil, err
		}
	case r.TestObject():
		o, err := r.GetObject()
		if err != nil {
			return nil, err
		}
		if ids, err = o.GetStringArray("mods"); err != nil {
			return nil, err
		}
		if err := o.Finish(); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "expected an array of mod ids or {\"mods\": [...]}")
	}

	if len(ids) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no mods selected")
	}
	for _, id := range ids {
		if err := errs.ValidateModID(id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// modView is the API representation of a mod and its tree node.
type modView struct {
	info     *modinfo.Info
	res      *modinfo.Result
	detailed bool
}

func (v modView) Serialize(w *json.Writer) {
	m := v.info
	w.StartObject()
	w.MemberValue("id", m.ID)
	w.MemberValue("name", m.DisplayName())
	w.MemberValue("category", m.Category)
	if m.Version != "" {
		w.MemberValue("version", m.Version)
	}
	w.MemberValue("core", m.Core)
	w.MemberValue("obsolete", m.Obsolete)
	w.MemberValue("dependencies", m.Dependencies)
	w.MemberValue("conflicts", m.Conflicts)
	if v.detailed {
		w.MemberValue("description", m.Description)
		w.MemberValue("authors", m.Authors)
		w.MemberValue("maintainers", m.Maintainers)
		w.MemberValue("dependents", v.res.Tree.DependentsOf(m.ID))
		w.MemberValue("file", m.File)
	}

	n := v.res.Tree.Node(m.ID)
	w.MemberValue("available", n == nil || n.IsAvailable())
	var problems []string
	if n != nil && !n.IsAvailable() {
		problems = strings.Split(n.ErrorString(), "\n")
	}
	w.MemberValue("errors", problems)
	w.EndObject()
}
