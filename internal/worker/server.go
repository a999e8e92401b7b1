// Package worker runs the Asynq server for background tasks.
package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/tasks"
)

// WorkerServer wraps the Asynq server lifecycle.
type WorkerServer struct {
	server *asynq.Server
	log    *logrus.Entry
	files  UploadCleaner
}

// NewWorkerServer creates the worker. files is the storage sink the
// cleanup handler operates on.
func NewWorkerServer(redisOpt asynq.RedisClientOpt, files UploadCleaner, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server: server,
		log:    logEntry,
		files:  files,
	}
}

// Start runs the worker server. Call it from its own goroutine.
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeUploadCleanup, NewUploadCleanupHandler(ws.files).ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		}
		ws.log.Info("Worker server stopped.")
	}
}

// Shutdown waits for in-flight tasks and stops the server.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
