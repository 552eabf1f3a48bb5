package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/api"
	"github.com/kimm528/ringfitmanager/auth"
	"github.com/kimm528/ringfitmanager/authz"
	"github.com/kimm528/ringfitmanager/config"
	"github.com/kimm528/ringfitmanager/devices"
	devicesTest "github.com/kimm528/ringfitmanager/devices/test"
	"github.com/kimm528/ringfitmanager/fitlife"
	fitlifeTest "github.com/kimm528/ringfitmanager/fitlife/test"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/outbox"
	"github.com/kimm528/ringfitmanager/reports"
	dbTest "github.com/kimm528/ringfitmanager/store/test"
	"github.com/kimm528/ringfitmanager/users"
)

var _ = Describe("Server", func() {
	var app *fxtest.App
	var e *echo.Echo
	var tokens *auth.TokenManager
	var healthCheck *api.HealthCheck
	var vendor *fitlifeTest.MockClient
	var adminToken, viewerToken string

	BeforeEach(func() {
		vendor = fitlifeTest.NewMockClient(gomock.NewController(GinkgoT()))
		database := dbTest.GetTestDatabase()
		cfg := &config.Config{
			JwtSecret:         "api-test-secret",
			SessionTTL:        time.Hour,
			SnapshotCacheSize: 10,
			SnapshotCacheTTL:  time.Minute,
		}

		app = fxtest.New(GinkgoT(),
			fx.Supply(database, database.Client(), zap.NewNop(), zap.NewNop().Sugar(), health.DefaultProfile(), cfg),
			fx.Provide(
				func() fitlife.Client { return vendor },
				outbox.NewRepository,
				api.NewHealthCheck,
				api.NewHandler,
				api.NewServer,
			),
			users.Module,
			devices.Module,
			monitoring.Module,
			reports.Module,
			auth.Module,
			authz.Module,
			fx.Populate(&e, &tokens, &healthCheck),
		)
		app.RequireStart()

		var err error
		adminToken, _, err = tokens.Issue(auth.Auth{SubjectId: "admin", Name: "Park", Role: auth.RoleAdmin})
		Expect(err).ToNot(HaveOccurred())
		viewerToken, _, err = tokens.Issue(auth.Auth{SubjectId: "viewer", Name: "Lee", Role: auth.RoleViewer})
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		app.RequireStop()
		database := dbTest.GetTestDatabase()
		for _, collection := range []string{users.CollectionName, devices.CollectionName, outbox.CollectionName} {
			_, err := database.Collection(collection).DeleteMany(context.Background(), bson.M{})
			Expect(err).ToNot(HaveOccurred())
		}
	})

	serve := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			Expect(err).ToNot(HaveOccurred())
			reader = strings.NewReader(string(encoded))
		}
		req := httptest.NewRequest(method, path, reader)
		if body != nil {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		}
		if token != "" {
			req.Header.Set(auth.AuthorizationHeaderKey, "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v interface{}) {
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	createUser := func(name string) api.User {
		rec := serve(http.MethodPost, "/v1/users", adminToken, api.UserInput{Name: name})
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		user := api.User{}
		decode(rec, &user)
		return user
	}

	Describe("Routes", func() {
		It("registers exactly the operations of the OpenAPI document", func() {
			swagger, err := api.GetSwagger()
			Expect(err).ToNot(HaveOccurred())

			pathParam := regexp.MustCompile(`\{([^}]+)\}`)
			documented := []string{}
			for path, item := range swagger.Paths.Map() {
				for method := range item.Operations() {
					documented = append(documented, method+" "+pathParam.ReplaceAllString(path, ":$1"))
				}
			}

			registered := []string{}
			for _, route := range e.Routes() {
				if route.Path == "/ready" {
					continue
				}
				registered = append(registered, route.Method+" "+route.Path)
			}
			Expect(registered).To(ConsistOf(documented))
		})
	})

	Describe("Readiness", func() {
		It("is not ready until the database answered", func() {
			healthCheck.SetReady(false)
			Expect(serve(http.MethodGet, "/ready", "", nil).Code).To(Equal(http.StatusServiceUnavailable))
			healthCheck.SetReady(true)
			Expect(serve(http.MethodGet, "/ready", "", nil).Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Authentication", func() {
		It("requires a session token", func() {
			Expect(serve(http.MethodGet, "/v1/users", "", nil).Code).To(Equal(http.StatusUnauthorized))
		})

		It("logs in with vendor credentials", func() {
			vendor.EXPECT().Login(gomock.Any(), "park", "secret").Return(&fitlife.LoginResult{
				Admin: fitlife.Admin{Id: "a-1", Name: "Park", Role: "admin"},
			}, nil)

			rec := serve(http.MethodPost, "/v1/auth/login", "", api.LoginRequest{Id: "park", Password: "secret"})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			session := api.Session{}
			decode(rec, &session)
			Expect(session.Admin.Role).To(Equal(auth.RoleAdmin))

			Expect(serve(http.MethodGet, "/v1/users", session.Token, nil).Code).To(Equal(http.StatusOK))
		})

		It("rejects invalid vendor credentials", func() {
			vendor.EXPECT().Login(gomock.Any(), "park", "wrong").Return(nil, fitlife.ErrInvalidCredentials)

			rec := serve(http.MethodPost, "/v1/auth/login", "", api.LoginRequest{Id: "park", Password: "wrong"})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("lets viewers read but not write", func() {
			Expect(serve(http.MethodGet, "/v1/users", viewerToken, nil).Code).To(Equal(http.StatusOK))
			Expect(serve(http.MethodPost, "/v1/users", viewerToken, api.UserInput{Name: "Kim"}).Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Users", func() {
		It("creates and fetches users with their effective profile", func() {
			created := createUser("Kim Minsu")
			Expect(created.Id).ToNot(BeEmpty())
			Expect(created.Profile).To(Equal(health.DefaultProfile()))

			rec := serve(http.MethodGet, "/v1/users/"+created.Id, viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			fetched := api.User{}
			decode(rec, &fetched)
			Expect(fetched.Name).To(Equal("Kim Minsu"))
		})

		It("validates request bodies", func() {
			rec := serve(http.MethodPost, "/v1/users", adminToken, map[string]interface{}{"room": "101"})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns not found for unknown users", func() {
			rec := serve(http.MethodGet, "/v1/users/"+primitive.NewObjectID().Hex(), adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("lists users", func() {
			createUser("Kim Minsu")
			createUser("Lee Jiwoo")

			rec := serve(http.MethodGet, "/v1/users?search=lee&limit=10", adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			list := api.Users{}
			decode(rec, &list)
			Expect(list.TotalCount).To(Equal(1))
			Expect(list.Users[0].Name).To(Equal("Lee Jiwoo"))
		})

		It("merges and resets threshold overrides", func() {
			created := createUser("Kim Minsu")

			rec := serve(http.MethodPatch, "/v1/users/"+created.Id+"/thresholds", adminToken, map[string]interface{}{
				"heartRate": map[string]interface{}{"warningHigh": 105},
			})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			updated := api.User{}
			decode(rec, &updated)
			Expect(updated.Profile.Thresholds.HeartRate.WarningHigh).To(Equal(105.0))
			Expect(updated.Profile.Thresholds.HeartRate.DangerHigh).To(Equal(health.DefaultThresholds().HeartRate.DangerHigh))

			rec = serve(http.MethodDelete, "/v1/users/"+created.Id+"/thresholds", adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			reset := api.User{}
			decode(rec, &reset)
			Expect(reset.Thresholds).To(BeNil())
			Expect(reset.Profile.Thresholds).To(Equal(health.DefaultThresholds()))
		})

		It("rejects null threshold overrides", func() {
			created := createUser("Kim Minsu")

			rec := serve(http.MethodPatch, "/v1/users/"+created.Id+"/thresholds", adminToken, map[string]interface{}{
				"heartRate": nil,
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			rec = serve(http.MethodGet, "/v1/users/"+created.Id, adminToken, nil)
			fetched := api.User{}
			decode(rec, &fetched)
			Expect(fetched.Profile.Thresholds.HeartRate).To(Equal(health.DefaultThresholds().HeartRate))
		})

		It("rejects thresholds out of order", func() {
			created := createUser("Kim Minsu")

			rec := serve(http.MethodPatch, "/v1/users/"+created.Id+"/thresholds", adminToken, map[string]interface{}{
				"heartRate": map[string]interface{}{"warningHigh": 200},
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("deletes users", func() {
			created := createUser("Kim Minsu")
			Expect(serve(http.MethodDelete, "/v1/users/"+created.Id, adminToken, nil).Code).To(Equal(http.StatusNoContent))
			Expect(serve(http.MethodGet, "/v1/users/"+created.Id, adminToken, nil).Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Devices", func() {
		It("registers, assigns and unassigns devices", func() {
			user := createUser("Kim Minsu")
			mac := devicesTest.RandomMac()

			rec := serve(http.MethodPost, "/v1/devices", adminToken, api.DeviceInput{Mac: strings.ToLower(mac)})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			device := api.Device{}
			decode(rec, &device)
			Expect(device.Mac).To(Equal(strings.ToUpper(mac)))

			Expect(serve(http.MethodPost, "/v1/devices", adminToken, api.DeviceInput{Mac: mac}).Code).To(Equal(http.StatusConflict))

			rec = serve(http.MethodPut, "/v1/devices/"+device.Id+"/assignment", adminToken, api.Assignment{UserId: user.Id})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			decode(rec, &device)
			Expect(device.UserId).To(PointTo(Equal(user.Id)))

			rec = serve(http.MethodGet, "/v1/devices?assigned=true", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			list := api.Devices{}
			decode(rec, &list)
			Expect(list.TotalCount).To(Equal(1))

			rec = serve(http.MethodDelete, "/v1/devices/"+device.Id+"/assignment", adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			unassigned := api.Device{}
			decode(rec, &unassigned)
			Expect(unassigned.UserId).To(BeNil())
		})

		It("rejects malformed mac addresses", func() {
			Expect(serve(http.MethodPost, "/v1/devices", adminToken, api.DeviceInput{Mac: "not-a-mac"}).Code).To(Equal(http.StatusBadRequest))
		})

		It("imports vendor devices", func() {
			mac := devicesTest.RandomMac()
			vendor.EXPECT().ListDevices(gomock.Any()).Return([]fitlife.Device{{Mac: mac, Model: "R1"}}, nil)

			rec := serve(http.MethodPost, "/v1/devices/sync", adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			result := api.SyncResult{}
			decode(rec, &result)
			Expect(result.Added).To(ConsistOf(strings.ToUpper(mac)))
		})
	})

	Describe("Monitoring", func() {
		It("lists one card per user with status counts", func() {
			createUser("Kim Minsu")

			rec := serve(http.MethodGet, "/v1/dashboard", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			dashboard := api.Dashboard{}
			decode(rec, &dashboard)
			Expect(dashboard.Cards).To(HaveLen(1))
			Expect(dashboard.Counts).To(HaveKeyWithValue("nodata", 1))
			Expect(dashboard.Counts).To(HaveKeyWithValue("danger", 0))
		})

		It("rejects unknown statuses", func() {
			Expect(serve(http.MethodGet, "/v1/dashboard?minStatus=critical", viewerToken, nil).Code).To(Equal(http.StatusBadRequest))
		})

		It("evaluates a user", func() {
			user := createUser("Kim Minsu")

			rec := serve(http.MethodGet, "/v1/users/"+user.Id+"/evaluation", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			card := api.Card{}
			decode(rec, &card)
			Expect(card.Device).To(BeNil())
			Expect(card.Evaluation.Overall).To(Equal(health.StatusNoData))
		})

		It("returns the default profile", func() {
			rec := serve(http.MethodGet, "/v1/profile/default", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			profile := health.Profile{}
			decode(rec, &profile)
			Expect(profile).To(Equal(health.DefaultProfile()))
		})

		It("lists recorded alerts", func() {
			rec := serve(http.MethodGet, "/v1/alerts?limit=5", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
		})
	})

	Describe("Reports", func() {
		It("downloads the health report workbook", func() {
			user := createUser("Kim Minsu")

			rec := serve(http.MethodGet, "/v1/users/"+user.Id+"/report", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			Expect(rec.Header().Get(echo.HeaderContentType)).To(Equal(api.ContentTypeXlsx))
			Expect(rec.Header().Get(echo.HeaderContentDisposition)).To(ContainSubstring("health-" + user.Id))
			Expect(rec.Body.Len()).To(BeNumerically(">", 0))
		})

		It("renders the printable page", func() {
			user := createUser("Kim Minsu")

			rec := serve(http.MethodGet, "/v1/users/"+user.Id+"/report?format=html", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			Expect(rec.Body.String()).To(ContainSubstring("Kim Minsu"))
		})

		It("rejects periods longer than a month", func() {
			user := createUser("Kim Minsu")

			rec := serve(http.MethodGet, "/v1/users/"+user.Id+"/report?from=2024-01-01T00:00:00Z&to=2024-03-01T00:00:00Z", viewerToken, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("downloads the roster audit", func() {
			createUser("Kim Minsu")

			rec := serve(http.MethodGet, "/v1/reports/roster", adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get(echo.HeaderContentType)).To(Equal(api.ContentTypeXlsx))
		})
	})
})
