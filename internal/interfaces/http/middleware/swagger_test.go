package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func swaggerRequest(cfg config.SwaggerConfig, remoteAddr string) int {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.SwaggerConfig
		remoteAddr string
		want       int
	}{
		{"disabled", config.SwaggerConfig{Enabled: false}, "10.0.0.1:5000", http.StatusNotFound},
		{"open", config.SwaggerConfig{Enabled: true}, "203.0.113.9:5000", http.StatusOK},
		{"exact ip allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.1:5000", http.StatusOK},
		{"cidr allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "192.168.4.20:5000", http.StatusOK},
		{"outside list", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1", "192.168.0.0/16"}}, "203.0.113.9:5000", http.StatusForbidden},
		{"only junk entries", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip"}}, "10.0.0.1:5000", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, swaggerRequest(tt.cfg, tt.remoteAddr))
		})
	}
}

func TestParseAllowList(t *testing.T) {
	ips, nets := parseAllowList([]string{" 10.0.0.1 ", "::1", "172.16.0.0/12", "bogus", "300.0.0.0/8"})

	assert.Len(t, ips, 2)
	assert.Len(t, nets, 1)
	assert.True(t, isIPAllowed(net.ParseIP("172.20.1.1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("::1"), ips, nets))
	assert.False(t, isIPAllowed(nil, ips, nets))
}
