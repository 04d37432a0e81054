package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/handler"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/config"
	"go-marketplace-api/pkg/database"
	"go-marketplace-api/pkg/jwt"
	"go-marketplace-api/pkg/payment"
	"go-marketplace-api/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type routeFixture struct {
	t       *testing.T
	db      *gorm.DB
	manager *jwt.Manager
	app     *fiber.App
}

func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	manager := jwt.NewManager("test-secret", time.Hour)
	cfg := &config.Config{DefaultCommissionRate: decimal.NewFromInt(10)}
	h := wire(db, cfg, events.Nop{}, storage.NewMemoryStore(), payment.NewClient("http://127.0.0.1:1", "sk_test"), manager)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	registerRoutes(app, h, manager)
	return &routeFixture{t: t, db: db, manager: manager, app: app}
}

// login creates an active user holding exactly privileges and returns its
// bearer header.
func (f *routeFixture) login(privileges ...string) string {
	f.t.Helper()
	u := &model.User{Email: uuid.NewString() + "@example.com", FullName: "Vendor", IsActive: true, TokenVersion: "v1"}
	require.NoError(f.t, u.SetPassword("secret123"))
	for _, code := range privileges {
		p := model.Privilege{Code: code, Name: code}
		require.NoError(f.t, f.db.FirstOrCreate(&p, model.Privilege{Code: code}).Error)
		u.Privileges = append(u.Privileges, p)
	}
	require.NoError(f.t, f.db.Create(u).Error)

	tok, err := f.manager.GenerateToken(u.ID, u.Email, u.FullName, "", u.GetPrivilegeCodes(), u.TokenVersion)
	require.NoError(f.t, err)
	return "Bearer " + tok
}

func (f *routeFixture) status(method, path, auth, body string) int {
	f.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := f.app.Test(req)
	require.NoError(f.t, err)
	return resp.StatusCode
}

func TestVendorRoutesFollowPrivileges(t *testing.T) {
	f := newRouteFixture(t)
	id := uuid.NewString()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		privileges []string
		forbidden  bool
	}{
		{"fulfil without privilege", "PATCH", "/api/v1/store-orders/" + id + "/status", `{"status":"processing"}`, []string{model.PrivStoreUpdate}, true},
		{"fulfil with privilege", "PATCH", "/api/v1/store-orders/" + id + "/status", `{"status":"processing"}`, []string{model.PrivOrderFulfil}, false},
		{"store update without privilege", "PATCH", "/api/v1/stores/" + id, `{"name":"x"}`, []string{model.PrivOrderFulfil}, true},
		{"store update by admin", "PATCH", "/api/v1/stores/" + id, `{"name":"x"}`, []string{model.PrivStoreManageAll}, false},
		{"product update without privilege", "PATCH", "/api/v1/products/" + id, `{}`, []string{model.PrivProductDelete}, true},
		{"product update with privilege", "PATCH", "/api/v1/products/" + id, `{}`, []string{model.PrivProductUpdate}, false},
		{"variation create without privilege", "POST", "/api/v1/products/" + id + "/variations", `{}`, nil, true},
		{"product delete needs delete privilege", "DELETE", "/api/v1/products/" + id, "", []string{model.PrivProductUpdate}, true},
		{"product delete with privilege", "DELETE", "/api/v1/products/" + id, "", []string{model.PrivProductDelete}, false},
		{"media without privilege", "GET", "/api/v1/media/folders", "", []string{model.PrivProductUpdate}, true},
		{"media with privilege", "GET", "/api/v1/media/folders", "", []string{model.PrivMediaManage}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.status(tt.method, tt.path, f.login(tt.privileges...), tt.body)
			if tt.forbidden {
				assert.Equal(t, fiber.StatusForbidden, got)
			} else {
				assert.NotEqual(t, fiber.StatusForbidden, got)
			}
		})
	}
}

func TestMediaFoldersListForManager(t *testing.T) {
	f := newRouteFixture(t)
	assert.Equal(t, fiber.StatusOK, f.status("GET", "/api/v1/media/folders", f.login(model.PrivMediaManage), ""))
}
