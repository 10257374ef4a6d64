package main

import (
	"context"
	"time"

	"github.com/u22n/platform/internal/app"
)

const shutdownTimeout = 10 * time.Second

// @title           UnInbox Platform API
// @version         1.0
// @description     UnInbox Platform account APIs, including two-factor authentication.
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	platform := app.New()
	<-platform.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	platform.Stop(ctx)
}
