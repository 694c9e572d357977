package web

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/permutationlock/catacrawl/db/user"
	"github.com/permutationlock/catacrawl/server/log"
)

// userCreateHandler creates a user, adding it to the store.
func userCreateHandler(userDao UserDao, log log.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		username := r.FormValue("username")
		password := r.FormValue("password")
		u, err := user.New(username, password)
		if err != nil {
			writeInternalError(err, log, w)
			return
		}
		ctx := r.Context()
		if err := userDao.Create(ctx, *u); err != nil {
			writeInternalError(err, log, w)
			return
		}
	}
}

// userLoginHandler signs a user in, writing the account token to the response.
func userLoginHandler(userDao UserDao, tokenizer Tokenizer, log log.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		username := r.FormValue("username")
		password := r.FormValue("password")
		u, err := user.New(username, password)
		if err != nil {
			writeInternalError(err, log, w)
			return
		}
		ctx := r.Context()
		u2, err := userDao.Login(ctx, *u)
		if err != nil {
			log.Printf("login failure: %v", err)
			http.Error(w, "incorrect username/password", http.StatusUnauthorized)
			return
		}
		token, err := tokenizer.Create(u2.Username, u2.ID)
		if err != nil {
			writeInternalError(err, log, w)
			return
		}
		if _, err := w.Write([]byte(token)); err != nil {
			err = fmt.Errorf("writing authorization token: %w", err)
			writeInternalError(err, log, w)
			return
		}
	}
}

// userUpdatePasswordHandler updates the user's password after checking the old one.
func userUpdatePasswordHandler(userDao UserDao, log log.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		username := r.FormValue("username")
		password := r.FormValue("password")
		newPassword := r.FormValue("password_confirm")
		u, err := user.New(username, password)
		if err != nil {
			writeInternalError(err, log, w)
			return
		}
		ctx := r.Context()
		if err := userDao.UpdatePassword(ctx, *u, newPassword); err != nil {
			writeUserError(err, log, w)
			return
		}
	}
}

// userDeleteHandler deletes the user from the store.
func userDeleteHandler(userDao UserDao, log log.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		username := r.FormValue("username")
		password := r.FormValue("password")
		u, err := user.New(username, password)
		if err != nil {
			writeInternalError(err, log, w)
			return
		}
		ctx := r.Context()
		if err := userDao.Delete(ctx, *u); err != nil {
			writeUserError(err, log, w)
			return
		}
	}
}
