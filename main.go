package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"project-pulse/microservices/dashboard-service/handlers"
	"project-pulse/microservices/dashboard-service/logging"
	"project-pulse/microservices/dashboard-service/repositories"
	"project-pulse/microservices/dashboard-service/services"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Actor-ID, Actor-Name")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logging.Logger.Warnf("Event ID: CONFIG_WARNING, Description: %s is not a number, using default %d", key, fallback)
		return fallback
	}
	return n
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Dashboard Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded, relying on process environment: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set in the environment variables.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := repositories.ConnectMongo(ctx, mongoURI)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)

	probe := repositories.NewHealthProbe(client, logging.Logger, 3*time.Second)
	probe.Check(ctx)
	go probe.Run(ctx, 30*time.Second)

	// Primary store plus the in-process standby the facades fall back to.
	memory := repositories.NewMemoryStore()

	users := repositories.NewFallbackUserRepository(repositories.NewMongoUserRepository(db), memory.Users(), logging.Logger)
	projects := repositories.NewFallbackProjectRepository(repositories.NewMongoProjectRepository(db), memory.Projects(), logging.Logger)
	tasks := repositories.NewFallbackTaskRepository(repositories.NewMongoTaskRepository(db), memory.Tasks(), logging.Logger)
	timeEntries := repositories.NewFallbackTimeEntryRepository(repositories.NewMongoTimeEntryRepository(db), memory.TimeEntries(), logging.Logger)
	activityLog := repositories.NewFallbackActivityRepository(repositories.NewMongoActivityRepository(db), memory.Activity(), logging.Logger)
	mongoNotifications := repositories.NewMongoNotificationRepository(db)
	if err := mongoNotifications.EnsureIndexes(ctx); err != nil {
		logging.Logger.Warnf("Event ID: INDEX_CREATE_FAILED, Description: Could not ensure the notification event key index: %v", err)
	}
	notifications := repositories.NewFallbackNotificationRepository(mongoNotifications, memory.Notifications(), logging.Logger)
	emailJobs := repositories.NewFallbackEmailJobRepository(repositories.NewMongoEmailJobRepository(db), memory.EmailJobs(), logging.Logger)
	widgetConfigs := repositories.NewFallbackWidgetRepository(repositories.NewMongoWidgetRepository(db), memory.WidgetConfigs(), logging.Logger)

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	smtpPort := envInt("SMTP_PORT", 587)
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPassword := os.Getenv("SMTP_PASSWORD")
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = smtpUser
	}
	mailer := services.NewGomailSender(smtpHost, smtpPort, smtpUser, smtpPassword, smtpFrom)

	emailService := services.NewEmailService(
		emailJobs,
		mailer,
		logging.Logger,
		envInt("EMAIL_WORKERS", 2),
		envInt("EMAIL_QUEUE_CAPACITY", 128),
		envInt("EMAIL_MAX_ATTEMPTS", 3),
		time.Second,
	)
	emailService.Start(ctx)
	emailService.RequeuePending(ctx)

	activityService := services.NewActivityService(activityLog, logging.Logger)
	notificationService := services.NewNotificationService(notifications, users, emailService, logging.Logger)
	userService := services.NewUserService(users, activityService, logging.Logger)
	projectService := services.NewProjectService(projects, activityService, notificationService, logging.Logger)
	taskService := services.NewTaskService(tasks, projects, users, activityService, notificationService, logging.Logger)
	timeEntryService := services.NewTimeEntryService(timeEntries, tasks, activityService, logging.Logger)
	widgetService := services.NewWidgetService(widgetConfigs, logging.Logger)

	go taskService.RunDeadlineScanner(ctx, time.Hour)

	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	timeEntryHandler := handlers.NewTimeEntryHandler(timeEntryService)
	activityHandler := handlers.NewActivityHandler(activityService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	widgetHandler := handlers.NewWidgetHandler(widgetService)

	r := mux.NewRouter()

	r.HandleFunc("/api/users", userHandler.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/api/users", userHandler.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userID}", userHandler.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userID}", userHandler.UpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/api/users/{userID}", userHandler.DeleteUser).Methods(http.MethodDelete)

	r.HandleFunc("/api/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	r.HandleFunc("/api/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{projectID}", projectHandler.GetProject).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{projectID}", projectHandler.UpdateProject).Methods(http.MethodPut)
	r.HandleFunc("/api/projects/{projectID}", projectHandler.DeleteProject).Methods(http.MethodDelete)

	r.HandleFunc("/api/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks", taskHandler.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{taskID}", taskHandler.GetTask).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/api/tasks/{taskID}/comments", taskHandler.CommentOnTask).Methods(http.MethodPost)

	r.HandleFunc("/api/time-entries", timeEntryHandler.LogTime).Methods(http.MethodPost)
	r.HandleFunc("/api/time-entries", timeEntryHandler.ListEntries).Methods(http.MethodGet)
	r.HandleFunc("/api/time-entries/{entryID}", timeEntryHandler.GetEntry).Methods(http.MethodGet)
	r.HandleFunc("/api/time-entries/{entryID}", timeEntryHandler.UpdateEntry).Methods(http.MethodPut)
	r.HandleFunc("/api/time-entries/{entryID}", timeEntryHandler.DeleteEntry).Methods(http.MethodDelete)

	r.HandleFunc("/api/activity", activityHandler.Recent).Methods(http.MethodGet)
	r.HandleFunc("/api/activity/entity/{entityType}/{entityID}", activityHandler.ByEntity).Methods(http.MethodGet)
	r.HandleFunc("/api/activity/actor/{actorID}", activityHandler.ByActor).Methods(http.MethodGet)

	r.HandleFunc("/api/users/{userID}/notifications", notificationHandler.ListByUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userID}/notifications/unread-count", notificationHandler.UnreadCount).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userID}/notifications/read-all", notificationHandler.MarkAllRead).Methods(http.MethodPost)
	r.HandleFunc("/api/notifications/{notificationID}/read", notificationHandler.MarkRead).Methods(http.MethodPost)

	r.HandleFunc("/api/users/{userID}/widgets", widgetHandler.GetConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userID}/widgets", widgetHandler.AddWidget).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userID}/widgets/reposition", widgetHandler.Reposition).Methods(http.MethodPut)
	r.HandleFunc("/api/users/{userID}/widgets/reset", widgetHandler.Reset).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userID}/widgets/{widgetID}", widgetHandler.RemoveWidget).Methods(http.MethodDelete)
	r.HandleFunc("/api/users/{userID}/widgets/{widgetID}/settings", widgetHandler.UpdateSettings).Methods(http.MethodPut)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := "degraded"
		code := http.StatusServiceUnavailable
		if probe.Available() {
			status = "ok"
			code = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q}`, status)
	}).Methods(http.MethodGet)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: enableCORS(r),
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Event ID: SERVICE_STOPPING, Description: Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: HTTP server shutdown failed: %v", err)
	}
	emailService.Shutdown()
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Dashboard Service stopped.")
}
