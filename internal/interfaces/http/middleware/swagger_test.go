package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	serve := func(cfg SwaggerConfig, remoteAddr string) int {
		r := gin.New()
		r.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
			c.String(http.StatusOK, "docs")
		})
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNotFound, serve(SwaggerConfig{}, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, serve(SwaggerConfig{Enabled: true}, "10.0.0.1:1234"))

	restricted := SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "192.168.1.7", "not-an-ip"}}
	assert.Equal(t, http.StatusOK, serve(restricted, "10.20.30.40:1234"))
	assert.Equal(t, http.StatusOK, serve(restricted, "192.168.1.7:1234"))
	assert.Equal(t, http.StatusForbidden, serve(restricted, "192.168.1.8:1234"))
}

func TestIPAllowed(t *testing.T) {
	_, network, _ := net.ParseCIDR("127.0.0.0/8")
	assert.True(t, ipAllowed(net.ParseIP("127.0.0.1"), []*net.IPNet{network}))
	assert.False(t, ipAllowed(nil, []*net.IPNet{network}))
	assert.False(t, ipAllowed(net.ParseIP("8.8.8.8"), []*net.IPNet{network}))
}
