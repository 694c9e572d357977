package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/permutationlock/catacrawl/db/user"
	"github.com/permutationlock/catacrawl/server/log"
)

// qrImageSize is the pixel width of the join QR code, sized for phone cameras.
const qrImageSize = 320

// authHandler checks that the bearer token of the request was signed for the
// username in the form before running the child handler.
func authHandler(h httprouter.Handle, tokenizer Tokenizer, log log.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenUsername, err := getTokenUsername(r.Header.Get("Authorization"), tokenizer)
		if err != nil {
			log.Printf("checking authorization: %v", err)
			httpError(w, http.StatusForbidden)
			return
		}
		if formUsername := r.FormValue("username"); tokenUsername != formUsername {
			log.Printf("checking authorization: form username not same as token username")
			httpError(w, http.StatusForbidden)
			return
		}
		h(w, r, ps)
	}
}

// getTokenUsername retrieves the username the bearer token in the authorization header was signed for.
func getTokenUsername(authorization string, tokenizer Tokenizer) (string, error) {
	if len(authorization) < 7 || authorization[:7] != "Bearer " {
		return "", fmt.Errorf("invalid authorization header: %v", authorization)
	}
	tokenString := authorization[7:]
	username, err := tokenizer.ReadUsername(tokenString)
	if err != nil {
		return "", fmt.Errorf("reading token username: %w", err)
	}
	return username, nil
}

// joinQRHandler writes a QR code of the matchmaking url so a game can be joined from another device.
func joinQRHandler(joinURL string, log log.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		png, err := qrcode.Encode(joinURL, qrcode.Medium, qrImageSize)
		if err != nil {
			writeInternalError(fmt.Errorf("encoding join url: %w", err), log, w)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if _, err := w.Write(png); err != nil {
			log.Printf("writing join qr code: %v", err)
		}
	}
}

// healthzHandler reports that the server is up.
func healthzHandler() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}
}

// writeInternalError logs and writes the error as an internal server error (500).
func writeInternalError(err error, log log.Logger, w http.ResponseWriter) {
	log.Printf("server error: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// writeUserError writes the error, reporting incorrect credentials as unauthorized (401).
func writeUserError(err error, log log.Logger, w http.ResponseWriter) {
	if errors.Is(err, user.ErrIncorrectLogin) {
		log.Printf("user error: %v", err)
		http.Error(w, user.ErrIncorrectLogin.Error(), http.StatusUnauthorized)
		return
	}
	writeInternalError(err, log, w)
}

// httpError writes the error status code.
func httpError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}
