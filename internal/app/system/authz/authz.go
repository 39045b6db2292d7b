// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/taskhub/taskhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. This ensures callers can trust that ok=true means
// a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in token - fail closed for security.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// UserID is a convenience wrapper when only the id matters.
func UserID(r *http.Request) (primitive.ObjectID, bool) {
	_, uid, ok := UserCtx(r)
	return uid, ok
}
