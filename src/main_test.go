package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lodging/src/config"
	"lodging/src/db"
	"lodging/src/db/testdb"
	"lodging/src/lib"
	"lodging/src/models"
	"lodging/src/services"
	"lodging/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

const (
	jwtSecret  = "test-secret"
	checkinKey = "6368616e676520746869732070617373776f726420746f206120736563726574"
	origin     = "http://localhost:3000"

	ownerID    uint = 10
	guestID    uint = 20
	strangerID uint = 30
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type TestSuite struct {
	suite.Suite
	DB       *gorm.DB
	Clock    *testClock
	Router   *gin.Engine
	Property models.Property
	Tokens   map[uint]string
}

func generateJWT(user models.User) (string, error) {
	claims := &types.Claims{
		Username: user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()

	d := testdb.New(s.T())
	db.NewDB(d)
	s.DB = d

	s.Property = testdb.SeedProperty(s.T(), d, ownerID, 1000)
	s.Tokens = map[uint]string{}
	for _, id := range []uint{ownerID, guestID, strangerID} {
		user := testdb.SeedUser(s.T(), d, id)
		token, err := generateJWT(user)
		if err != nil {
			log.Fatalf("Error generating JWT token: %s\n", err.Error())
		}
		s.Tokens[id] = token
	}

	s.Clock = &testClock{now: time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := services.NewEngine(d, services.EngineConfig{
		Locker:     lib.NewLocalLocker(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        s.Clock.Now,
		CheckinKey: checkinKey,
		Dispatch:   func(fn func()) { fn() },
	})
	app := &App{Engine: engine, Config: config.Config{JWTSecret: jwtSecret, TempDir: s.T().TempDir()}}

	router := setupRouter()
	authorizedRoutes(router, app)
	s.Router = router
}

func (s *TestSuite) SetupTest() {
	s.Clock.Set(time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC))
}

func (s *TestSuite) TearDownTest() {
	s.DB.Exec("DELETE FROM checkpoint_photos")
	s.DB.Exec("DELETE FROM payments")
	s.DB.Exec("DELETE FROM reservations")
}

func (s *TestSuite) request(method, url string, userID uint, body any) (int, string) {
	var reader io.Reader
	if body != nil {
		rbytes, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = strings.NewReader(string(rbytes))
	}
	req, err := http.NewRequest(method, url, reader)
	s.Require().NoError(err)
	req.Header.Set("origin", origin)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Tokens[userID]))
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	rbytes, err := io.ReadAll(w.Body)
	s.Require().NoError(err)
	return w.Code, string(rbytes)
}

func (s *TestSuite) book(checkIn, checkOut string) uint {
	code, body := s.request("POST", "/api/v1/reservations", guestID, map[string]any{
		"property_id": s.Property.ID,
		"check_in":    checkIn,
		"check_out":   checkOut,
	})
	s.Require().Equal(http.StatusCreated, code, body)
	return uint(gjson.Get(body, "data.id").Uint())
}

var card = map[string]any{
	"card_number":     "4532 0151 1283 0366",
	"cvv":             "123",
	"exp_month":       "12",
	"exp_year":        "2031",
	"cardholder_name": "Ana Cruz",
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func (s *TestSuite) TestMaintenanceMode() {
	router := setupRouter()
	router = maintenanceModeMiddleware(router, config.Config{MaintenanceMode: true})
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)

	router = maintenanceModeMiddleware(setupRouter(), config.Config{})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestTokenSignedWithOtherSecret() {
	claims := &types.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(guestID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	s.Require().NoError(err)

	req, _ := http.NewRequest("GET", "/api/v1/reservations", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestUnauthorized() {
	code, _ := s.request("GET", "/api/v1/reservations", 0, nil)
	assert.Equal(s.T(), http.StatusUnauthorized, code)

	req, _ := http.NewRequest("GET", "/api/v1/reservations", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestQuoteAndAvailability() {
	url := fmt.Sprintf("/api/v1/properties/%d/quote?check_in=2030-06-10&check_out=2030-06-13", s.Property.ID)
	code, body := s.request("GET", url, guestID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), int64(3), gjson.Get(body, "data.nights").Int())
	assert.Equal(s.T(), 3000.0, gjson.Get(body, "data.total_price").Float())

	url = fmt.Sprintf("/api/v1/properties/%d/availability?check_in=2030-06-10&check_out=2030-06-13", s.Property.ID)
	code, body = s.request("GET", url, guestID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.True(s.T(), gjson.Get(body, "data.available").Bool())

	s.book("2030-06-10", "2030-06-13")

	code, body = s.request("GET", url, guestID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.False(s.T(), gjson.Get(body, "data.available").Bool())

	s.Run("Should reject a malformed date with 400", func() {
		url := fmt.Sprintf("/api/v1/properties/%d/quote?check_in=10/06/2030&check_out=2030-06-13", s.Property.ID)
		code, body := s.request("GET", url, guestID, nil)
		assert.Equal(s.T(), http.StatusBadRequest, code)
		assert.NotEmpty(s.T(), gjson.Get(body, "error").String())
	})

	s.Run("Should return 404 for an unknown property", func() {
		code, body := s.request("GET", "/api/v1/properties/9999/quote?check_in=2030-06-10&check_out=2030-06-13", guestID, nil)
		assert.Equal(s.T(), http.StatusNotFound, code)
		assert.Equal(s.T(), "PropertyNotFound", gjson.Get(body, "kind").String())
	})
}

func (s *TestSuite) TestReservationLifecycle() {
	id := s.book("2030-06-10", "2030-06-12")
	base := fmt.Sprintf("/api/v1/reservations/%d", id)

	code, body := s.request("GET", base, guestID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), "confirmed", gjson.Get(body, "data.state").String())
	assert.Equal(s.T(), 2000.0, gjson.Get(body, "data.total_price").Float())

	code, body = s.request("GET", base, strangerID, nil)
	assert.Equal(s.T(), http.StatusForbidden, code, body)

	code, body = s.request("POST", base+"/payment", guestID, card)
	assert.Equal(s.T(), http.StatusCreated, code, body)
	assert.Equal(s.T(), "0366", gjson.Get(body, "data.last4_card_digits").String())
	assert.Equal(s.T(), "completed", gjson.Get(body, "data.state").String())

	code, body = s.request("POST", base+"/payment", guestID, card)
	assert.Equal(s.T(), http.StatusBadRequest, code, body)
	assert.Equal(s.T(), "AlreadyHasCompletedPayment", gjson.Get(body, "kind").String())

	code, body = s.request("GET", base+"/payment", ownerID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), 2000.0, gjson.Get(body, "data.amount").Float())

	code, body = s.request("POST", base+"/checkin", guestID, map[string]any{})
	assert.Equal(s.T(), http.StatusBadRequest, code, body)
	assert.Equal(s.T(), "OutsideCheckinWindow", gjson.Get(body, "kind").String())

	s.Clock.Set(time.Date(2030, 6, 9, 18, 0, 0, 0, time.UTC))

	code, body = s.request("GET", base+"/qrcode?format=json", guestID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	checkinCode := gjson.Get(body, "data.code").String()
	assert.NotEmpty(s.T(), checkinCode)

	code, body = s.request("POST", base+"/checkin", guestID, map[string]any{
		"code":   checkinCode,
		"photos": []string{"https://cdn.example.com/in-1.jpg"},
	})
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), "check-in", gjson.Get(body, "data.state").String())

	code, body = s.request("POST", base+"/checkout", guestID, map[string]any{})
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), "check-out", gjson.Get(body, "data.state").String())

	code, body = s.request("POST", base+"/complete", guestID, nil)
	assert.Equal(s.T(), http.StatusBadRequest, code, body)
	assert.Equal(s.T(), "MissingRequiredPhotos", gjson.Get(body, "kind").String())

	code, body = s.request("POST", base+"/photos", guestID, map[string]any{
		"url":  "https://cdn.example.com/out-1.jpg",
		"kind": "checkout",
	})
	assert.Equal(s.T(), http.StatusCreated, code, body)

	code, body = s.request("GET", base+"/photos?kind=checkout", ownerID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), int64(1), gjson.Get(body, "count").Int())

	code, body = s.request("POST", base+"/complete", ownerID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), "completed", gjson.Get(body, "data.state").String())

	code, body = s.request("PUT", base+"/cancel", guestID, nil)
	assert.Equal(s.T(), http.StatusBadRequest, code, body)
	assert.Equal(s.T(), "NotConfirmedCannotCancel", gjson.Get(body, "kind").String())
}

func (s *TestSuite) TestCancelWithPenalty() {
	early := s.book("2030-06-20", "2030-06-22")
	late := s.book("2030-06-02", "2030-06-04")

	code, body := s.request("PUT", fmt.Sprintf("/api/v1/reservations/%d/cancel", early), guestID, map[string]any{"reason": "plans changed"})
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), 0.0, gjson.Get(body, "penalty").Float())
	assert.Equal(s.T(), "cancelled", gjson.Get(body, "data.state").String())

	code, body = s.request("PUT", fmt.Sprintf("/api/v1/reservations/%d/cancel", late), guestID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), 1000.0, gjson.Get(body, "penalty").Float())

	code, body = s.request("GET", "/api/v1/reservations?as=guest", guestID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), int64(2), gjson.Get(body, "count").Int())

	code, body = s.request("GET", "/api/v1/reservations?as=owner", ownerID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), int64(2), gjson.Get(body, "count").Int())

	code, body = s.request("GET", "/api/v1/reservations?as=guest", strangerID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), int64(0), gjson.Get(body, "count").Int())

	// cancelled stays free the dates again
	s.book("2030-06-20", "2030-06-22")

	url := fmt.Sprintf("/api/v1/properties/%d/reservations", s.Property.ID)
	code, body = s.request("GET", url, ownerID, nil)
	assert.Equal(s.T(), http.StatusOK, code, body)
	assert.Equal(s.T(), int64(3), gjson.Get(body, "count").Int())

	code, _ = s.request("GET", url, guestID, nil)
	assert.Equal(s.T(), http.StatusForbidden, code)
}

func (s *TestSuite) TestReservationRejections() {
	s.Run("Should return 400 for a missing property id", func() {
		code, body := s.request("POST", "/api/v1/reservations", guestID, map[string]any{
			"check_in":  "2030-06-10",
			"check_out": "2030-06-12",
		})
		assert.Equal(s.T(), http.StatusBadRequest, code)
		assert.NotEmpty(s.T(), gjson.Get(body, "error").String())
	})

	s.Run("Should reject an inverted range", func() {
		code, body := s.request("POST", "/api/v1/reservations", guestID, map[string]any{
			"property_id": s.Property.ID,
			"check_in":    "2030-06-12",
			"check_out":   "2030-06-10",
		})
		assert.Equal(s.T(), http.StatusBadRequest, code)
		assert.Equal(s.T(), "InvalidDateRange", gjson.Get(body, "kind").String())
	})

	s.Run("Should reject overlapping stays", func() {
		s.book("2030-07-01", "2030-07-05")
		code, body := s.request("POST", "/api/v1/reservations", guestID, map[string]any{
			"property_id": s.Property.ID,
			"check_in":    "2030-07-04",
			"check_out":   "2030-07-08",
		})
		assert.Equal(s.T(), http.StatusBadRequest, code)
		assert.Equal(s.T(), "PropertyUnavailable", gjson.Get(body, "kind").String())
	})

	s.Run("Should return 404 for an unknown reservation", func() {
		code, body := s.request("GET", "/api/v1/reservations/424242", guestID, nil)
		assert.Equal(s.T(), http.StatusNotFound, code)
		assert.Equal(s.T(), "ReservationNotFound", gjson.Get(body, "kind").String())
	})

	s.Run("Should reject an expired card", func() {
		id := s.book("2030-08-01", "2030-08-03")
		expired := map[string]any{}
		for k, v := range card {
			expired[k] = v
		}
		expired["exp_year"] = "2029"
		code, body := s.request("POST", fmt.Sprintf("/api/v1/reservations/%d/payment", id), guestID, expired)
		assert.Equal(s.T(), http.StatusBadRequest, code)
		assert.Equal(s.T(), "CardExpired", gjson.Get(body, "kind").String())

		code, body = s.request("GET", fmt.Sprintf("/api/v1/reservations/%d/payment", id), guestID, nil)
		assert.Equal(s.T(), http.StatusNotFound, code)
		assert.Equal(s.T(), "PaymentNotFound", gjson.Get(body, "kind").String())
	})

	s.Run("Should reject an unknown photo kind", func() {
		id := s.book("2030-09-01", "2030-09-03")
		code, _ := s.request("POST", fmt.Sprintf("/api/v1/reservations/%d/photos", id), guestID, map[string]any{
			"url":  "https://cdn.example.com/x.jpg",
			"kind": "selfie",
		})
		assert.Equal(s.T(), http.StatusBadRequest, code)
	})
}

func (s *TestSuite) TestCheckinQRCode() {
	id := s.book("2030-06-10", "2030-06-12")

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/reservations/%d/qrcode", id), nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Tokens[guestID]))
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Header().Get("Content-Disposition"), "checkin.jpeg")
	assert.Greater(s.T(), w.Body.Len(), 0)

	code, _ := s.request("GET", fmt.Sprintf("/api/v1/reservations/%d/qrcode?format=json", id), ownerID, nil)
	assert.Equal(s.T(), http.StatusForbidden, code)
}

func (s *TestSuite) TestCheckinCodeRouteNeedsKey() {
	engine := services.NewEngine(s.DB, services.EngineConfig{
		Locker:   lib.NewLocalLocker(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      s.Clock.Now,
		Dispatch: func(fn func()) { fn() },
	})
	router := setupRouter()
	authorizedRoutes(router, &App{Engine: engine, Config: config.Config{JWTSecret: jwtSecret}})

	id := s.book("2030-06-10", "2030-06-12")
	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/reservations/%d/qrcode?format=json", id), nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Tokens[guestID]))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *TestSuite) TestInitLoggerWithUnwritableLogDir() {
	defaultWriter, defaultLogger := gin.DefaultWriter, slog.Default()
	defer func() {
		gin.DefaultWriter = defaultWriter
		slog.SetDefault(defaultLogger)
	}()

	// a regular file where the log directory should be
	blocker := filepath.Join(s.T().TempDir(), "logs")
	s.Require().NoError(os.WriteFile(blocker, nil, 0o644))

	logger := initLogger(config.Config{LogDir: blocker, LogLevel: "error"})
	assert.NotNil(s.T(), logger)
	assert.Equal(s.T(), os.Stdout, gin.DefaultWriter)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
