package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/httputil"
	"github.com/AdamBeresnev/op-shuffle/internal/metrics"
	"github.com/AdamBeresnev/op-shuffle/internal/middleware"
	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/AdamBeresnev/op-shuffle/internal/service"
	"github.com/AdamBeresnev/op-shuffle/internal/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type application struct {
	events   *service.EventService
	shuffle  *service.ShuffleService
	brackets *service.BracketService
	matches  *service.MatchService

	locks    *middleware.KeyedMutex
	registry *prometheus.Registry
}

func newApplication(database *sqlx.DB, src random.Source, logger *slog.Logger, registry *prometheus.Registry) *application {
	eventStore := store.NewEventStore(database)
	playerStore := store.NewPlayerStore(database)
	tournamentStore := store.NewTournamentStore(database)

	tel := service.NewTelemetry(logger, metrics.New(registry))

	return &application{
		events:   service.NewEventService(eventStore, playerStore, tel),
		shuffle:  service.NewShuffleService(eventStore, playerStore, src, tel),
		brackets: service.NewBracketService(database, eventStore, playerStore, tournamentStore, src, tel),
		matches:  service.NewMatchService(database, eventStore, tournamentStore, tel),
		locks:    middleware.NewKeyedMutex(),
		registry: registry,
	}
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	r.Route("/events", func(r chi.Router) {
		r.Get("/", app.listEvents)
		r.Post("/", app.createEvent)

		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", app.getEvent)
			r.Get("/players", app.listPlayers)
			r.Get("/players/registered", app.isRegistered)
			r.Get("/shuffle", app.previewTeams)
			r.Get("/bracket", app.getBracket)
			r.Get("/brackets", app.listBrackets)
			r.Get("/champion", app.getChampion)

			// Writes against one event run one at a time.
			r.Group(func(r chi.Router) {
				r.Use(middleware.SerializeBy(app.locks, "code"))

				r.Put("/active", app.setActive)
				r.Post("/players", app.register)
				r.Put("/players/{id}/status", app.setPlayerStatus)
				r.Delete("/players/{id}", app.removePlayer)
				r.Post("/bracket", app.createBracket)
				r.Post("/bracket/reshuffle", app.reshuffleBracket)
				r.Delete("/bracket", app.deleteBracket)
				r.Post("/matches/{id}/winner", app.declareWinner)
			})
		})
	})

	r.Get("/brackets/{id}/teams", app.bracketTeams)

	r.Route("/masterlist", func(r chi.Router) {
		r.Get("/", app.listMasterlist)
		r.Post("/", app.addMasterlistPlayer)
		r.Put("/{id}", app.updateMasterlistPlayer)
		r.Delete("/{id}", app.deleteMasterlistPlayer)
		r.Post("/{id}/ban", app.banPlayer)
		r.Post("/{id}/unban", app.unbanPlayer)
	})

	return r
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %v", event.ErrInvalid, err)
	}
	return nil
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad id", event.ErrInvalid)
	}
	return id, nil
}

// teamsQuery reads the optional ?teams= count. Absent means automatic.
func teamsQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("teams")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: teams must be a number", event.ErrInvalid)
	}
	return n, nil
}

func (app *application) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := app.events.ListEvents(r.Context())
	if err != nil {
		httputil.Error(w, "Failed to list events", err)
		return
	}
	httputil.JSON(w, http.StatusOK, events)
}

func (app *application) createEvent(w http.ResponseWriter, r *http.Request) {
	var in event.EventInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(w, "Invalid event", err)
		return
	}
	e, err := app.events.CreateEvent(r.Context(), in)
	if err != nil {
		httputil.Error(w, "Failed to create event", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, e)
}

func (app *application) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := app.events.GetEvent(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	httputil.JSON(w, http.StatusOK, e)
}

func (app *application) setActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httputil.Error(w, "Invalid body", err)
		return
	}
	if err := app.events.SetActive(r.Context(), chi.URLParam(r, "code"), body.Active); err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	var in service.RegistrationInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(w, "Invalid registration", err)
		return
	}
	reg, err := app.events.Register(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, reg)
}

func (app *application) isRegistered(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.BadRequest(w, "name is required", nil)
		return
	}
	ok, err := app.events.IsRegistered(r.Context(), chi.URLParam(r, "code"), name)
	if err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]bool{"registered": ok})
}

func (app *application) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := app.events.ListPlayers(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	httputil.JSON(w, http.StatusOK, players)
}

func (app *application) setPlayerStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Player", err)
		return
	}
	var body struct {
		Status event.PlayerStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httputil.Error(w, "Invalid body", err)
		return
	}
	if err := app.events.SetPlayerStatus(r.Context(), chi.URLParam(r, "code"), id, body.Status); err != nil {
		httputil.Error(w, "Player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) removePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Player", err)
		return
	}
	if err := app.events.RemovePlayer(r.Context(), chi.URLParam(r, "code"), id); err != nil {
		httputil.Error(w, "Player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) previewTeams(w http.ResponseWriter, r *http.Request) {
	requested, err := teamsQuery(r)
	if err != nil {
		httputil.Error(w, "Invalid query", err)
		return
	}
	res, err := app.shuffle.Preview(r.Context(), chi.URLParam(r, "code"), requested)
	if err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

func (app *application) createBracket(w http.ResponseWriter, r *http.Request) {
	requested, err := teamsQuery(r)
	if err != nil {
		httputil.Error(w, "Invalid query", err)
		return
	}
	created, err := app.brackets.Create(r.Context(), chi.URLParam(r, "code"), requested)
	if err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, created)
}

func (app *application) getBracket(w http.ResponseWriter, r *http.Request) {
	rounds, err := app.brackets.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.Error(w, "Bracket", err)
		return
	}
	httputil.JSON(w, http.StatusOK, rounds)
}

func (app *application) listBrackets(w http.ResponseWriter, r *http.Request) {
	brackets, err := app.brackets.ListBrackets(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.Error(w, "Event", err)
		return
	}
	httputil.JSON(w, http.StatusOK, brackets)
}

func (app *application) bracketTeams(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Bracket", err)
		return
	}
	teams, err := app.brackets.LoadTeams(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Bracket", err)
		return
	}
	httputil.JSON(w, http.StatusOK, teams)
}

func (app *application) reshuffleBracket(w http.ResponseWriter, r *http.Request) {
	matches, err := app.brackets.Reshuffle(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.Error(w, "Bracket", err)
		return
	}
	httputil.JSON(w, http.StatusOK, matches)
}

func (app *application) deleteBracket(w http.ResponseWriter, r *http.Request) {
	if err := app.brackets.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		httputil.Error(w, "Bracket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) declareWinner(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Match", err)
		return
	}
	var body struct {
		Winner string `json:"winner"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httputil.Error(w, "Invalid body", err)
		return
	}
	res, err := app.matches.DeclareWinner(r.Context(), chi.URLParam(r, "code"), id, body.Winner)
	if err != nil {
		httputil.Error(w, "Match", err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

func (app *application) getChampion(w http.ResponseWriter, r *http.Request) {
	champion, err := app.matches.GetChampion(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.Error(w, "Champion", err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"champion": champion})
}

func (app *application) listMasterlist(w http.ResponseWriter, r *http.Request) {
	players, err := app.events.ListMasterlist(r.Context())
	if err != nil {
		httputil.Error(w, "Failed to list masterlist", err)
		return
	}
	httputil.JSON(w, http.StatusOK, players)
}

func (app *application) addMasterlistPlayer(w http.ResponseWriter, r *http.Request) {
	var in service.MasterlistInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(w, "Invalid player", err)
		return
	}
	p, err := app.events.AddMasterlistPlayer(r.Context(), in)
	if err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, p)
}

func (app *application) updateMasterlistPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	var in service.MasterlistInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(w, "Invalid player", err)
		return
	}
	p, err := app.events.UpdateMasterlistPlayer(r.Context(), id, in)
	if err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	httputil.JSON(w, http.StatusOK, p)
}

func (app *application) deleteMasterlistPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	if err := app.events.DeleteMasterlistPlayer(r.Context(), id); err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) banPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httputil.Error(w, "Invalid body", err)
		return
	}
	if err := app.events.BanPlayer(r.Context(), id, body.Reason); err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) unbanPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	if err := app.events.UnbanPlayer(r.Context(), id); err != nil {
		httputil.Error(w, "Masterlist player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
