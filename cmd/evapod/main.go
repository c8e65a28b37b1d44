package main

import (
	"fmt"
	"os"

	_ "evapod/docs" // Swagger docs
)

// @title EVAPOD API
// @version 1.0
// @description Evangelism reporting, follow-up tracking and fellowship hierarchy API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey CSRFToken
// @in header
// @name X-CSRF-Token

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
