// Package metrics регистрирует счётчики Prometheus для ключевых событий
// сервиса. Счётчики доступны по /metrics через promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal считает успешные регистрации пользователей.
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_access_registrations_total",
		Help: "Total number of successfully registered users.",
	})

	// LoginsTotal считает попытки входа с меткой результата.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "user_access_logins_total",
		Help: "Total number of login attempts by result.",
	}, []string{"result"})

	// SnapshotLoadFailures считает случаи, когда снимок хранилища
	// не удалось прочитать и сервис стартовал с пустой таблицей.
	// Состояние тихо не проглатывается: лог + метрика.
	SnapshotLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_access_snapshot_load_failures_total",
		Help: "Total number of credential snapshot files that failed to load.",
	})
)
