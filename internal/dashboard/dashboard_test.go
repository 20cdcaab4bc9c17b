package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/source-dashboard/internal/dashboard"
	"github.com/angeloszaimis/source-dashboard/internal/metrics"
	"github.com/angeloszaimis/source-dashboard/internal/runtimeconfig"
	"github.com/angeloszaimis/source-dashboard/internal/source"
	"github.com/angeloszaimis/source-dashboard/internal/status"
)

// configOrigin serves /config/config.json with a document that tests can swap.
type configOrigin struct {
	server *httptest.Server
	doc    atomic.Value
}

func newConfigOrigin() *configOrigin {
	o := &configOrigin{}
	o.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != runtimeconfig.CanonicalPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(o.doc.Load())
	}))
	return o
}

func (o *configOrigin) serve(primary, secondary, env string) {
	o.doc.Store(map[string]string{
		runtimeconfig.KeyPrimary:     primary,
		runtimeconfig.KeySecondary:   secondary,
		runtimeconfig.KeyEnvironment: env,
	})
}

func recordsHandler(path string, records []source.Record) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})
}

func failingHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", code)
	})
}

// hangingHandler blocks until the client goes away and reports that on gone.
func hangingHandler(gone chan<- struct{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		select {
		case gone <- struct{}{}:
		default:
		}
	})
}

func threeRecords() []source.Record {
	return []source.Record{
		{ID: 1, Name: "a", Description: "first"},
		{ID: 2, Name: "b", Description: "second"},
		{ID: 3, Name: "c", Description: "third"},
	}
}

var _ = Describe("Dashboard", func() {
	var (
		origin   *configOrigin
		store    *runtimeconfig.Store
		resolver *runtimeconfig.Resolver
		dash     *dashboard.Dashboard
		ctx      context.Context
		cancel   context.CancelFunc
		servers  []*httptest.Server
	)

	start := func(h http.Handler) *httptest.Server {
		s := httptest.NewServer(h)
		servers = append(servers, s)
		return s
	}

	panel := func(name string) func() dashboard.Panel {
		return func() dashboard.Panel {
			p, ok := dash.View().Panel(name)
			Expect(ok).To(BeTrue())
			return p
		}
	}

	statusOf := func(name string) func() status.Health {
		return func() status.Health { return panel(name)().Status }
	}

	mount := func() {
		_, err := resolver.Resolve(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(dash.Mount(ctx)).To(Succeed())
	}

	BeforeEach(func() {
		servers = nil
		origin = newConfigOrigin()
		store = runtimeconfig.NewStore()
		ctx, cancel = context.WithCancel(context.Background())

		var err error
		resolver, err = runtimeconfig.NewResolver(runtimeconfig.Options{
			BaseURL: origin.server.URL,
			Store:   store,
		})
		Expect(err).NotTo(HaveOccurred())

		dash, err = dashboard.New(dashboard.Options{Store: store})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		dash.Close()
		cancel()
		dash.Wait()
		for _, s := range servers {
			s.Close()
		}
		origin.server.Close()
	})

	Describe("New", func() {
		It("should require a store", func() {
			_, err := dashboard.New(dashboard.Options{})
			Expect(err).To(HaveOccurred())
		})

		It("should reject a source without an endpoint function", func() {
			_, err := dashboard.New(dashboard.Options{
				Store:   store,
				Sources: []dashboard.Source{{Name: "x", Title: "X"}},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Mount", func() {
		It("should refuse to start before the runtime config is loaded", func() {
			err := dash.Mount(ctx)
			Expect(errors.Is(err, runtimeconfig.ErrNotLoaded)).To(BeTrue())
			Expect(dash.View().Panels).To(BeEmpty())
		})

		It("should show every source as syncing right after mount", func() {
			gone := make(chan struct{}, 2)
			hang := start(hangingHandler(gone))
			origin.serve(hang.URL, hang.URL, "dev")

			mount()

			vm := dash.View()
			Expect(vm.Panels).To(HaveLen(2))
			for _, p := range vm.Panels {
				Expect(p.Status).To(Equal(status.Syncing))
				Expect(p.Tone).To(Equal(status.ToneAmber))
				Expect(p.Loading).To(BeTrue())
				Expect(p.Records).To(BeEmpty())
				Expect(p.Empty).To(BeFalse())
				Expect(p.LastUpdated).To(Equal(dashboard.NotUpdated))
			}
		})

		It("should only mount once", func() {
			api := start(recordsHandler("/data", nil))
			origin.serve(api.URL, api.URL, "dev")
			mount()

			Expect(dash.Mount(ctx)).To(MatchError(dashboard.ErrAlreadyMounted))
		})

		It("should expose the normalized configuration", func() {
			primary := start(recordsHandler("/data", threeRecords()))
			secondary := start(recordsHandler("/data2", threeRecords()))
			origin.serve(primary.URL+"/", secondary.URL, "staging")

			mount()

			vm := dash.View()
			Expect(vm.Environment).To(Equal("staging"))
			Expect(vm.PrimaryEndpoint).To(Equal(primary.URL))
			Expect(vm.SecondaryEndpoint).To(Equal(secondary.URL))

			Eventually(statusOf("primary")).Should(Equal(status.Healthy))
			Expect(panel("primary")().Records).To(HaveLen(3))
		})
	})

	Describe("independent sources", func() {
		It("should degrade only the failing source", func() {
			primary := start(failingHandler(http.StatusInternalServerError))
			secondary := start(recordsHandler("/data2", threeRecords()))
			origin.serve(primary.URL, secondary.URL, "dev")

			mount()

			Eventually(statusOf("primary")).Should(Equal(status.Degraded))
			Eventually(statusOf("secondary")).Should(Equal(status.Healthy))

			p := panel("primary")()
			Expect(p.Error).To(Equal("Request failed: 500 Internal Server Error"))
			Expect(p.Records).To(BeEmpty())
			Expect(p.Empty).To(BeFalse())
			Expect(p.Tone).To(Equal(status.ToneRose))
			Expect(p.LastUpdated).To(Equal(dashboard.NotUpdated))

			s := panel("secondary")()
			Expect(s.Error).To(BeEmpty())
			Expect(s.Records).To(Equal(threeRecords()))
			Expect(s.Tone).To(Equal(status.ToneEmerald))
			Expect(s.LastUpdatedAt).NotTo(BeNil())
			Expect(s.LastUpdated).NotTo(Equal(dashboard.NotUpdated))
		})

		It("should render a fast source while the other one hangs", func() {
			gone := make(chan struct{}, 1)
			primary := start(hangingHandler(gone))
			secondary := start(recordsHandler("/data2", threeRecords()))
			origin.serve(primary.URL, secondary.URL, "dev")

			mount()

			Eventually(statusOf("secondary")).Should(Equal(status.Healthy))
			Expect(panel("primary")().Status).To(Equal(status.Syncing))
		})

		It("should tell an empty list apart from a failure", func() {
			primary := start(recordsHandler("/data", []source.Record{}))
			secondary := start(failingHandler(http.StatusServiceUnavailable))
			origin.serve(primary.URL, secondary.URL, "dev")

			mount()

			Eventually(statusOf("primary")).Should(Equal(status.Healthy))
			Eventually(statusOf("secondary")).Should(Equal(status.Degraded))

			Expect(panel("primary")().Empty).To(BeTrue())
			Expect(panel("primary")().Error).To(BeEmpty())
			Expect(panel("secondary")().Empty).To(BeFalse())
			Expect(panel("secondary")().Error).To(ContainSubstring("503"))
		})
	})

	Describe("Apply", func() {
		It("should fail before mount", func() {
			_, err := dash.Apply()
			Expect(err).To(MatchError(dashboard.ErrNotMounted))
		})

		It("should restart only the source whose endpoint moved", func() {
			gone := make(chan struct{}, 1)
			old := start(hangingHandler(gone))
			secondary := start(recordsHandler("/data2", threeRecords()))
			origin.serve(old.URL, secondary.URL, "dev")
			mount()
			Eventually(statusOf("secondary")).Should(Equal(status.Healthy))

			moved := start(recordsHandler("/data", threeRecords()))
			origin.serve(moved.URL, secondary.URL, "dev")
			_, err := resolver.Resolve(ctx)
			Expect(err).NotTo(HaveOccurred())

			started, err := dash.Apply()
			Expect(err).NotTo(HaveOccurred())
			Expect(started).To(Equal(1))

			Eventually(gone).Should(Receive())
			Eventually(statusOf("primary")).Should(Equal(status.Healthy))
			Expect(panel("primary")().Endpoint).To(Equal(moved.URL))
			Expect(dash.View().PrimaryEndpoint).To(Equal(moved.URL))
		})

		It("should report syncing immediately after the endpoint changes", func() {
			first := start(recordsHandler("/data", threeRecords()))
			secondary := start(recordsHandler("/data2", threeRecords()))
			origin.serve(first.URL, secondary.URL, "dev")
			mount()
			Eventually(statusOf("primary")).Should(Equal(status.Healthy))

			gone := make(chan struct{}, 1)
			second := start(hangingHandler(gone))
			origin.serve(second.URL, secondary.URL, "dev")
			_, err := resolver.Resolve(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = dash.Apply()
			Expect(err).NotTo(HaveOccurred())

			p := panel("primary")()
			Expect(p.Status).To(Equal(status.Syncing))
			Expect(p.Records).To(BeEmpty())
			Expect(panel("secondary")().Status).To(Equal(status.Healthy))
		})

		It("should leave loaders alone when nothing moved", func() {
			api := start(recordsHandler("/data", threeRecords()))
			origin.serve(api.URL, api.URL, "dev")
			mount()

			_, err := resolver.Resolve(ctx)
			Expect(err).NotTo(HaveOccurred())

			started, err := dash.Apply()
			Expect(err).NotTo(HaveOccurred())
			Expect(started).To(BeZero())
		})
	})

	Describe("Refresh", func() {
		It("should start a new cycle at the same endpoints", func() {
			var hits atomic.Int32
			api := start(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.Write([]byte("[]"))
			}))
			origin.serve(api.URL, api.URL, "dev")
			mount()
			Eventually(hits.Load).Should(BeEquivalentTo(2))

			Expect(dash.Refresh()).To(Succeed())
			Eventually(hits.Load).Should(BeEquivalentTo(4))
		})
	})

	Describe("View", func() {
		It("should not rebuild while nothing changed", func() {
			api := start(recordsHandler("/data", threeRecords()))
			origin.serve(api.URL, api.URL, "dev")
			mount()
			dash.Wait()

			dash.View()
			before := dash.Stats()
			dash.View()
			dash.View()
			Expect(dash.Stats()).To(Equal(before))
		})

		It("should not reproject a status whose loading and error pair is unchanged", func() {
			api := start(failingHandler(http.StatusBadGateway))
			origin.serve(api.URL, api.URL, "dev")
			mount()
			dash.Wait()

			dash.View()
			before := dash.Stats()

			Expect(dash.Refresh()).To(Succeed())
			dash.Wait()

			vm := dash.View()
			after := dash.Stats()
			Expect(after.Views).To(Equal(before.Views + 1))
			Expect(after.Projections).To(Equal(before.Projections))
			Expect(vm.Panels[0].Status).To(Equal(status.Degraded))
		})

		It("should rebuild when the configuration is re-resolved", func() {
			api := start(recordsHandler("/data", threeRecords()))
			origin.serve(api.URL, api.URL, "dev")
			mount()
			dash.Wait()

			dash.View()
			before := dash.Stats()

			origin.serve(api.URL, api.URL, "prod")
			_, err := resolver.Resolve(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(dash.View().Environment).To(Equal("prod"))
			Expect(dash.Stats().Views).To(Equal(before.Views + 1))
		})
	})

	Describe("Close", func() {
		It("should cancel pending requests and refuse further use", func() {
			gone := make(chan struct{}, 2)
			hang := start(hangingHandler(gone))
			origin.serve(hang.URL, hang.URL, "dev")
			mount()

			dash.Close()
			Eventually(gone).Should(Receive())

			Expect(dash.Mount(ctx)).To(MatchError(dashboard.ErrClosed))
			_, err := dash.Apply()
			Expect(err).To(MatchError(dashboard.ErrClosed))
			Consistently(statusOf("primary"), 50*time.Millisecond).Should(Equal(status.Syncing))
		})
	})

	Describe("events", func() {
		It("should forward loader events", func() {
			events := make(chan metrics.MetricEvent, 16)
			var err error
			dash, err = dashboard.New(dashboard.Options{Store: store, Events: events})
			Expect(err).NotTo(HaveOccurred())

			api := start(recordsHandler("/data", threeRecords()))
			origin.serve(api.URL, api.URL, "dev")
			mount()
			dash.Wait()

			var started int
			for len(events) > 0 {
				if ev := <-events; ev.Type == metrics.EventCycleStarted {
					started++
				}
			}
			Expect(started).To(Equal(2))
		})
	})
})
