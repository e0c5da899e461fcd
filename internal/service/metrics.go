package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	studentMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_student_mutations_total",
		Help: "Student create and delete operations by result.",
	}, []string{"op", "result"})

	backupOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_backup_operations_total",
		Help: "Backup create, download, delete and prune operations by result.",
	}, []string{"op", "result"})

	backupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_backup_duration_seconds",
		Help:    "Time spent producing a database dump.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})
)
