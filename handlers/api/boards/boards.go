package boards

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"whiteboard/core"
	"whiteboard/export"
	"whiteboard/handlers/auth"
	"whiteboard/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// maxBoardSize bounds a PUT body.
const maxBoardSize = 8 << 20

func errorJSON(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

// requireBoard resolves the caller and the {key} URL parameter, writing the error
// response itself when either is missing or invalid.
func requireBoard(w http.ResponseWriter, r *http.Request) (*auth.AppClaims, string, bool) {
	claims, ok := middleware.Claims(r)
	if !ok {
		errorJSON(w, r, http.StatusUnauthorized, "User claims not found")
		return nil, "", false
	}
	key := chi.URLParam(r, "key")
	if err := core.ValidateID(key); err != nil {
		errorJSON(w, r, http.StatusBadRequest, "Invalid board key")
		return nil, "", false
	}
	return claims, key, true
}

// loadBoard fetches the board and decodes its snapshot, mapping store errors to status codes.
func loadBoard(w http.ResponseWriter, r *http.Request, store core.BoardStore) (*core.Board, core.Snapshot, bool) {
	claims, key, ok := requireBoard(w, r)
	if !ok {
		return nil, core.Snapshot{}, false
	}
	log := logrus.WithFields(logrus.Fields{"userID": claims.Subject, "key": key})

	board, err := store.Get(r.Context(), claims.Subject, key)
	if err != nil {
		if errors.Is(err, core.ErrBoardNotFound) {
			log.WithError(err).Warn("Board not found")
			errorJSON(w, r, http.StatusNotFound, "Board not found")
			return nil, core.Snapshot{}, false
		}
		log.WithError(err).Error("Failed to get board")
		errorJSON(w, r, http.StatusInternalServerError, "Failed to get board")
		return nil, core.Snapshot{}, false
	}

	snapshot, err := core.DecodeSnapshot(board.Data)
	if err != nil {
		log.WithError(err).Error("Stored board does not decode")
		errorJSON(w, r, http.StatusInternalServerError, "Stored board is corrupt")
		return nil, core.Snapshot{}, false
	}
	return board, snapshot, true
}

func HandleListBoards(store core.BoardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.Claims(r)
		if !ok {
			errorJSON(w, r, http.StatusUnauthorized, "User claims not found")
			return
		}

		boards, err := store.List(r.Context(), claims.Subject)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
			}).Error("Failed to list boards")
			errorJSON(w, r, http.StatusInternalServerError, "Failed to list boards")
			return
		}

		// Return an empty array rather than null.
		if boards == nil {
			boards = []*core.Board{}
		}

		render.JSON(w, r, boards)
	}
}

func HandleGetBoard(store core.BoardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, _, ok := loadBoard(w, r, store)
		if !ok {
			return
		}

		// The board data is returned as the stored snapshot bytes.
		w.Header().Set("Content-Type", "application/json")
		if len(board.Data) == 0 {
			data, _ := core.EncodeSnapshot(core.NewSnapshot(nil))
			w.Write(data)
			return
		}
		w.Write(board.Data)
	}
}

func HandleSaveBoard(store core.BoardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, key, ok := requireBoard(w, r)
		if !ok {
			return
		}
		log := logrus.WithFields(logrus.Fields{"userID": claims.Subject, "key": key})

		defer r.Body.Close()
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBoardSize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				errorJSON(w, r, http.StatusRequestEntityTooLarge, "Board is too large")
				return
			}
			log.WithError(err).Error("Failed to read request body")
			errorJSON(w, r, http.StatusInternalServerError, "Failed to read request body")
			return
		}

		snapshot, err := core.DecodeSnapshot(bytes.TrimSpace(body))
		if err != nil {
			log.WithError(err).Warn("Rejected invalid board")
			errorJSON(w, r, http.StatusBadRequest, err.Error())
			return
		}
		data, err := core.EncodeSnapshot(snapshot)
		if err != nil {
			log.WithError(err).Error("Failed to encode board")
			errorJSON(w, r, http.StatusInternalServerError, "Failed to encode board")
			return
		}

		name := r.URL.Query().Get("name")
		if name == "" {
			name = key
		}
		thumbnail, err := export.Thumbnail(snapshot)
		if err != nil && !errors.Is(err, export.ErrNothingToExport) {
			log.WithError(err).Warn("Failed to render thumbnail")
		}

		board := &core.Board{
			ID:        key,
			UserID:    claims.Subject,
			Name:      name,
			Thumbnail: thumbnail,
			Data:      data,
		}
		if err := store.Save(r.Context(), board); err != nil {
			log.WithError(err).Error("Failed to save board")
			errorJSON(w, r, http.StatusInternalServerError, "Failed to save board")
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, board.Meta())
	}
}

func HandleDeleteBoard(store core.BoardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, key, ok := requireBoard(w, r)
		if !ok {
			return
		}
		log := logrus.WithFields(logrus.Fields{"userID": claims.Subject, "key": key})

		if err := store.Delete(r.Context(), claims.Subject, key); err != nil {
			if errors.Is(err, core.ErrBoardNotFound) {
				log.WithError(err).Warn("Board not found for deletion")
				errorJSON(w, r, http.StatusNotFound, "Board not found")
				return
			}
			log.WithError(err).Error("Failed to delete board")
			errorJSON(w, r, http.StatusInternalServerError, "Failed to delete board")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleExportPNG(store core.BoardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, snapshot, ok := loadBoard(w, r, store)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := export.PNG(&buf, snapshot); err != nil {
			if errors.Is(err, export.ErrNothingToExport) {
				errorJSON(w, r, http.StatusUnprocessableEntity, "Board is empty")
				return
			}
			logrus.WithError(err).WithField("key", board.ID).Error("Failed to render board")
			errorJSON(w, r, http.StatusInternalServerError, "Failed to render board")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", board.ID+".png"))
		w.Write(buf.Bytes())
	}
}

func HandleExportJSON(store core.BoardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, snapshot, ok := loadBoard(w, r, store)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", board.ID+".json"))
		if err := export.JSON(w, snapshot); err != nil {
			logrus.WithError(err).WithField("key", board.ID).Error("Failed to write board export")
		}
	}
}

// Routes mounts the board endpoints. The caller applies authentication.
func Routes(r chi.Router, store core.BoardStore) {
	r.Get("/", HandleListBoards(store))
	r.Route("/{key}", func(r chi.Router) {
		r.Get("/", HandleGetBoard(store))
		r.Put("/", HandleSaveBoard(store))
		r.Delete("/", HandleDeleteBoard(store))
		r.Get("/export.png", HandleExportPNG(store))
		r.Get("/export.json", HandleExportJSON(store))
	})
}
