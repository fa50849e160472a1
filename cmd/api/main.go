package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/modules/account"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
	"github.com/agrilinkng/agrilink-backend/internal/modules/center"
	"github.com/agrilinkng/agrilink-backend/internal/modules/dashboard"
	"github.com/agrilinkng/agrilink-backend/internal/modules/disbursement"
	"github.com/agrilinkng/agrilink-backend/internal/modules/farmer"
	"github.com/agrilinkng/agrilink-backend/internal/modules/geo"
	"github.com/agrilinkng/agrilink-backend/internal/modules/group"
	"github.com/agrilinkng/agrilink-backend/internal/modules/incentive"
	"github.com/agrilinkng/agrilink-backend/internal/modules/vendor"
)

const tokenTTL = 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	db, err := database.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Phase 1: Identity & Access ──────────────────────────
	accountRepo := account.NewPostgresRepository(db)
	accountService := account.NewService(accountRepo)

	authService := auth.NewService(accountRepo, []byte(jwtSecret), tokenTTL)
	gate := auth.NewGate(authService)
	auth.NewHandler(authService).RegisterRoutes(router, gate)
	account.NewHandler(accountService).RegisterRoutes(router, gate)

	if username, password := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD"); username != "" {
		if err := accountService.EnsureAdmin(context.Background(), username, password); err != nil {
			log.Fatal(err)
		}
	}

	// ── Phase 2: Reference Data ─────────────────────────────
	geoRepo := geo.NewPostgresRepository(db)
	geoService := geo.NewService(geoRepo)
	geo.NewHandler(geoService).RegisterRoutes(router, gate)

	groupRepo := group.NewPostgresRepository(db)
	groupService := group.NewService(groupRepo)
	group.NewHandler(groupService).RegisterRoutes(router, gate)

	// ── Phase 3: Field Network ──────────────────────────────
	vendorRepo := vendor.NewPostgresRepository(db)
	vendorService := vendor.NewService(vendorRepo)
	vendor.NewHandler(vendorService).RegisterRoutes(router, gate)

	centerRepo := center.NewPostgresRepository(db)
	centerService := center.NewService(centerRepo)
	center.NewHandler(centerService).RegisterRoutes(router, gate)

	// ── Phase 4: Farmer Registry ────────────────────────────
	farmerRepo := farmer.NewPostgresRepository(db)
	farmerService := farmer.NewService(farmerRepo)
	farmer.NewHandler(farmerService).RegisterRoutes(router, gate)

	// ── Phase 5: Incentives & Disbursement ──────────────────
	incentiveRepo := incentive.NewPostgresRepository(db)
	incentiveService := incentive.NewService(incentiveRepo)
	incentive.NewHandler(incentiveService).RegisterRoutes(router, gate)

	disbursementRepo := disbursement.NewPostgresRepository(db)
	disbursementService := disbursement.NewService(disbursementRepo)
	disbursement.NewHandler(disbursementService).RegisterRoutes(router, gate)

	// ── Phase 6: Dashboards ─────────────────────────────────
	dashboardRepo := dashboard.NewPostgresRepository(db)
	dashboardService := dashboard.NewService(dashboardRepo, incentiveService)
	dashboard.NewHandler(dashboardService).RegisterRoutes(router, gate)

	// ── Start Server ─────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("AgriLink API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
