package router

import (
	"net/http"
	"time"

	mem "pilltrack/internal/adapters/storage/memory"
	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/domain/medications"
	"pilltrack/internal/domain/notifications"
	"pilltrack/internal/domain/reminders"
	"pilltrack/internal/middleware"
	"pilltrack/internal/platform/logger"
	"pilltrack/internal/ports/auth"

	_ "pilltrack/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Stores agrupa los repositorios; app decide si son Postgres o in-memory.
type Stores struct {
	Medications   medications.Repository
	Reminders     reminders.Repository
	DoseLogs      doselogs.Repository
	Notifications notifications.Repository

	// Tx hace atómico MarkTaken (transición + descuento de inventario).
	Tx doselogs.Transactor
}

// MemoryStores arma los repos in-memory compartiendo el repo de medicaciones.
func MemoryStores() Stores {
	meds := mem.NewMedicationsRepo()
	doses := mem.NewDoseLogsRepo(meds)
	// los dos repos salen de este paquete: NewTransactor no puede fallar
	tx, _ := mem.NewTransactor(doses, meds)
	return Stores{
		Medications:   meds,
		Reminders:     mem.NewRemindersRepo(meds),
		DoseLogs:      doses,
		Notifications: mem.NewNotificationsRepo(),
		Tx:            tx,
	}
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Logger       logger.Logger

	// Opcional: si no viene, in-memory.
	Stores *Stores

	// Opcional: gateway ya armado (con publisher). Si no, se crea sin publisher.
	Notifications *notifications.Service

	// Opcional: sin Sweeps no se monta /admin/sweeps.
	Sweeps SweepTrigger

	// Now fija el reloj de los services (zona horaria configurada / tests).
	Now func() time.Time
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	stores := opts.Stores
	if stores == nil {
		s := MemoryStores()
		stores = &s
	}

	// Services por módulo
	medsSvc := medications.NewService(stores.Medications).WithClock(opts.Now)
	remindersSvc := reminders.NewService(stores.Reminders).WithClock(opts.Now)
	dosesSvc := doselogs.NewService(stores.DoseLogs, stores.Medications).
		WithClock(opts.Now).
		WithTransactor(stores.Tx)

	notifSvc := opts.Notifications
	if notifSvc == nil {
		notifSvc = notifications.NewService(stores.Notifications, nil).WithClock(opts.Now)
	}

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc)
	reminders.RegisterRoutes(r, remindersSvc, medsSvc)
	doselogs.RegisterRoutes(r, dosesSvc)
	notifications.RegisterRoutes(r, notifSvc)

	if opts.Sweeps != nil {
		registerAdminRoutes(r, opts.Sweeps)
	}

	return r
}
