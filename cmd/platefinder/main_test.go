package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/platefinder/internal/adapters/http/site"
	"github.com/okian/platefinder/internal/config"
	"github.com/okian/platefinder/internal/domain/types"
	"github.com/okian/platefinder/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const usersYAML = `
- username: creator
  password: c-pass
  roles: [RestaurantCreator]
- username: viewer
  password: v-pass
  roles: [RequestViewer]
`

const seedYAML = `
- name: Trattoria
  style: Italian
  address: 123 main street
  openHour: "18:00"
  closeHour: "22:00"
  vegetarian: true
- name: Dragon
  style: Chinese
  address: 4 Pine Lane
  openHour: "10:00"
  closeHour: "21:00"
  vegetarian: false
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestParseCommand(t *testing.T) {
	convey.Convey("Given the CLI", t, func() {
		var out bytes.Buffer
		cmd := newApp()
		cmd.Writer = &out

		convey.Convey("When parsing a query", func() {
			err := cmd.Run(context.Background(), []string{name, "parse", "vegetarian", "italian", "open", "18:00"})

			convey.Convey("Then the criteria are printed as JSON", func() {
				convey.So(err, convey.ShouldBeNil)
				var got map[string]any
				convey.So(json.Unmarshal(out.Bytes(), &got), convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, map[string]any{
					"vegetarian": true,
					"style":      "Italian",
					"openHour":   "18:00",
				})
			})
		})

		convey.Convey("When parsing without a query", func() {
			err := cmd.Run(context.Background(), []string{name, "parse"})

			convey.Convey("Then an error is returned", func() {
				convey.So(errors.Is(err, errNoQuery), convey.ShouldBeTrue)
			})
		})
	})
}

func TestServeWiring(t *testing.T) {
	convey.Convey("Given a configuration with users and seed files", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := config.New()
		cfg.UsersFile = writeFile(t, dir, "users.yaml", usersYAML)
		cfg.SeedFile = writeFile(t, dir, "seed.yaml", seedYAML)
		cfg.AuditWorkerCount = 0

		for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
			convey.Convey("Using the "+driver+" driver", func() {
				cfg.StoreDriver = driver
				cfg.SQLitePath = filepath.Join(t.TempDir(), "platefinder.db")

				svc, err := newService(ctx, cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop(ctx)

				srv := httptest.NewServer(newMux(ctx, svc, cfg))
				defer srv.Close()
				client := &http.Client{Timeout: 5 * time.Second}

				get := func(path, auth string) *http.Response {
					req, _ := http.NewRequest(http.MethodGet, srv.URL+path, http.NoBody)
					if auth != "" {
						req.Header.Set("Authorization", auth)
					}
					resp, err := client.Do(req)
					convey.So(err, convey.ShouldBeNil)
					return resp
				}

				convey.Convey("The banner is served at /", func() {
					resp := get("/", "")
					defer resp.Body.Close()
					var buf bytes.Buffer
					_, _ = buf.ReadFrom(resp.Body)
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
					convey.So(buf.String(), convey.ShouldEqual, site.Banner)
				})

				convey.Convey("A lookup is answered and then visible to viewers", func() {
					resp := get("/recommendations?q=vegetarian+italian+open+18:00+close+22:00", "")
					defer resp.Body.Close()
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
					var recs types.RecommendationsResponse
					convey.So(json.NewDecoder(resp.Body).Decode(&recs), convey.ShouldBeNil)
					convey.So(recs.Recommendations, convey.ShouldHaveLength, 1)
					convey.So(recs.Recommendations[0].Name, convey.ShouldEqual, "Trattoria")

					denied := get("/requests", basic("creator", "c-pass"))
					denied.Body.Close()
					convey.So(denied.StatusCode, convey.ShouldEqual, http.StatusForbidden)

					listed := get("/requests", basic("viewer", "v-pass"))
					defer listed.Body.Close()
					convey.So(listed.StatusCode, convey.ShouldEqual, http.StatusOK)
					var log types.RequestsResponse
					convey.So(json.NewDecoder(listed.Body).Decode(&log), convey.ShouldBeNil)
					convey.So(log.Requests, convey.ShouldHaveLength, 1)
					convey.So(log.Requests[0].Endpoint, convey.ShouldEqual, "/recommendations")
				})

				convey.Convey("Creators can add restaurants", func() {
					body := `{"name":"Taqueria","style":"Mexican","address":"9 Sun Boulevard","openHour":"11:00","closeHour":"20:00","vegetarian":false}`
					req, _ := http.NewRequest(http.MethodPost, srv.URL+"/restaurants", strings.NewReader(body))
					req.Header.Set("Authorization", basic("creator", "c-pass"))
					resp, err := client.Do(req)
					convey.So(err, convey.ShouldBeNil)
					resp.Body.Close()
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

					found := get("/recommendations?q=mexican", "")
					found.Body.Close()
					convey.So(found.StatusCode, convey.ShouldEqual, http.StatusOK)
				})

				convey.Convey("The docs and metrics routes respond", func() {
					for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/stats"} {
						resp := get(path, "")
						resp.Body.Close()
						convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
					}
				})
			})
		}
	})
}

func TestNewServiceErrors(t *testing.T) {
	convey.Convey("Given configuration pointing at missing files", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("A missing users file fails", func() {
			cfg.UsersFile = filepath.Join(t.TempDir(), "none.yaml")
			_, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("A missing seed file fails", func() {
			cfg.SeedFile = filepath.Join(t.TempDir(), "none.yaml")
			_, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("A missing file fails before the sqlite store is opened", func() {
			dir := t.TempDir()
			cfg.StoreDriver = config.DriverSQLite
			cfg.SQLitePath = filepath.Join(dir, "data", "pf.db")
			cfg.SeedFile = filepath.Join(dir, "none.yaml")

			_, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)

			_, statErr := os.Stat(cfg.SQLitePath)
			convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
