// cmd/api/main.go
// Main entry point for the application with debug logging
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/emberapp/ember-backend/internal/auth"
	"github.com/emberapp/ember-backend/internal/chat"
	"github.com/emberapp/ember-backend/internal/common/database"
	"github.com/emberapp/ember-backend/internal/config"
	"github.com/emberapp/ember-backend/internal/connections"
	"github.com/emberapp/ember-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	// Enable detailed logging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🔥 Starting Ember Dating App API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Printf("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("\n✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Warning: Invalid Redis URL (%v), continuing without Redis", err)
		} else {
			redisClient = redis.NewClient(opt)
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				log.Printf("⚠️  Redis ping failed: %v, continuing without Redis", err)
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Println("✅ Connected to Redis successfully")
			}
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 6. Run database migrations
	log.Println("\n🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Printf("❌ Migration error: %v", err)
		log.Fatal("Failed to run migrations")
	}
	log.Println("✅ Database migrations completed")

	// 7. Initialize chat provider
	log.Println("\n💬 Step 7: Initializing chat provider...")
	var chatProvider chat.Provider
	switch cfg.ChatProvider {
	case "http":
		chatProvider = chat.NewHTTPProvider(cfg.ChatAPIBase, cfg.ChatAPIKey, cfg.ChatAPISecret, cfg.ChatTimeout)
		log.Println("   ✅ Using HTTP chat provider")
	default:
		chatProvider = chat.NewMockProvider()
		log.Println("   ⚠️  Using mock chat provider (development mode)")
	}
	log.Println("✅ Chat provider initialized")

	// 8. Initialize Profile module
	log.Println("\n👤 Step 8: Initializing Profile module...")

	profileRepo := profile.NewPostgresRepository(db)

	var profileUploadService profile.UploadService
	if cfg.UseS3 {
		profileUploadService, err = profile.NewS3UploadService(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Printf("⚠️  Failed to init S3 for profiles, using local: %v", err)
			profileUploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		} else {
			log.Println("   ✅ Using S3 for profile uploads")
		}
	} else {
		profileUploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		log.Println("   ✅ Using local storage for profile uploads")
	}

	presence := profile.NewPresence(redisClient, cfg.PresenceTTL)

	profileService := profile.NewService(profileRepo, profileUploadService, presence, cfg.MaxPhotoSizeBytes)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profile module initialized")

	// 9. Initialize Connections module
	log.Println("\n❤️  Step 9: Initializing Connections module...")

	connectionsRepo := connections.NewRepository(db)
	connectionsService := connections.NewService(connectionsRepo, chatProvider)
	connectionsHandler := connections.NewHandler(connectionsService)
	log.Println("✅ Connections module initialized")

	// 10. Initialize auth middleware
	log.Println("\n🔐 Step 10: Initializing authentication middleware...")
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	log.Println("✅ Authentication middleware initialized")

	// 11. Setup routes
	log.Println("\n🛣️  Step 11: Setting up routes...")
	router := mux.NewRouter()

	// Static files for uploads
	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
		log.Println("   ✅ Static file server configured")
	}

	// Health check & metrics
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/api", apiInfo).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Register profile routes
	log.Println("   - Registering profile routes...")
	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	log.Println("   ✅ Profile routes registered")

	// Register connections routes
	log.Println("   - Registering connections routes...")
	connections.RegisterRoutes(router, connectionsHandler, authMiddleware)
	log.Println("   ✅ Connections routes registered")

	// Add middleware
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 12. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🔥 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// apiInfo returns API information
func apiInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{
        "name": "Ember Dating App API",
        "version": "1.0.0",
        "status": "running",
        "endpoints": {
            "health": "GET /health",
            "metrics": "GET /metrics",
            "profile": {
                "me": "GET /api/v1/profile",
                "update": "PUT /api/v1/profile",
                "picture": "POST /api/v1/profile/picture",
                "deletePicture": "DELETE /api/v1/profile/picture",
                "preferences": "GET /api/v1/profile/preferences",
                "updatePreferences": "PUT /api/v1/profile/preferences",
                "user": "GET /api/v1/users/{id}/profile",
                "discover": "GET /api/v1/discover"
            },
            "connections": {
                "like": "POST /api/v1/connections/like/{userId}",
                "unmatch": "POST /api/v1/connections/unmatch/{userId}",
                "block": "POST /api/v1/connections/block/{userId}",
                "unblock": "DELETE /api/v1/connections/block/{userId}",
                "state": "GET /api/v1/connections/state/{userId}",
                "matches": "GET /api/v1/connections/matches",
                "blocked": "GET /api/v1/connections/blocked",
                "channel": "GET /api/v1/connections/channel/{userId}"
            }
        }
    }`))
}

// Middleware functions

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	log.Println("   - Creating/updating tables...")

	migrations := []string{
		// Users table: identity and demographic fields
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email VARCHAR(255) UNIQUE,
            username VARCHAR(100) UNIQUE NOT NULL,
            password_hash VARCHAR(255),
            display_name VARCHAR(100) DEFAULT '',
            bio TEXT,
            birthdate DATE,
            gender VARCHAR(20),
            profile_picture TEXT,
            latitude DOUBLE PRECISION,
            longitude DOUBLE PRECISION,
            is_verified BOOLEAN DEFAULT FALSE,
            verified_at TIMESTAMP,
            last_online_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,

		// Extended lifestyle fields + preferences
		`CREATE TABLE IF NOT EXISTS user_profiles (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            height_cm INTEGER,
            education VARCHAR(100),
            occupation VARCHAR(100),
            smoking VARCHAR(20),
            drinking VARCHAR(20),
            children VARCHAR(20),
            preferences JSONB DEFAULT '{}',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT unique_user_profile UNIQUE(user_id)
        )`,

		// Likes: one row per directed pair, retired rows keep history
		`CREATE TABLE IF NOT EXISTS likes (
            id SERIAL PRIMARY KEY,
            liker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            liked_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            is_active BOOLEAN DEFAULT TRUE,
            unliked_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT unique_like UNIQUE(liker_id, liked_id)
        )`,

		// Matches: one row per unordered pair, user1_id < user2_id
		`CREATE TABLE IF NOT EXISTS matches (
            id SERIAL PRIMARY KEY,
            user1_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            user2_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            is_active BOOLEAN DEFAULT TRUE,
            unmatched_by INTEGER REFERENCES users(id),
            unmatched_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT unique_match UNIQUE(user1_id, user2_id),
            CONSTRAINT match_pair_ordered CHECK (user1_id < user2_id)
        )`,

		// Blocks
		`CREATE TABLE IF NOT EXISTS blocks (
            id SERIAL PRIMARY KEY,
            blocker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            blocked_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            reason TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT unique_block UNIQUE(blocker_id, blocked_id)
        )`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_online ON users(last_online_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_user_profiles_user_id ON user_profiles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_likes_liker ON likes(liker_id) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_likes_liked ON likes(liked_id) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user1 ON matches(user1_id) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches(user2_id) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_blocker ON blocks(blocker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id)`,
	}

	for i, migration := range migrations {
		log.Printf("   - Running migration %d/%d...", i+1, len(migrations))
		if _, err := db.Exec(migration); err != nil {
			// Don't fail on duplicate key errors (indexes already exist)
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			log.Printf("   - Migration %d skipped (already exists)", i+1)
		}
	}

	log.Println("   ✅ All migrations executed successfully")
	return nil
}
