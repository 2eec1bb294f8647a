// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false, so ok=true always means a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session: fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// UserID returns the signed-in user's ObjectID, or ErrUnauthorized.
func UserID(r *http.Request) (primitive.ObjectID, error) {
	_, _, id, ok := UserCtx(r)
	if !ok {
		return primitive.NilObjectID, apierr.Unauthorized("Sign in required.")
	}
	return id, nil
}

// RequireSelf checks that an instructor id taken from the URL names the
// signed-in user. The path id alone proves nothing about the course; callers
// that touch a stored course must also call RequireOwner.
func RequireSelf(r *http.Request, pathID string) (primitive.ObjectID, error) {
	uid, err := UserID(r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if pathID != uid.Hex() {
		return primitive.NilObjectID, apierr.Unauthorized("Unauthorized")
	}
	return uid, nil
}

// RequireOwner checks the stored instructor of c against the signed-in user.
func RequireOwner(r *http.Request, c *models.Course) (primitive.ObjectID, error) {
	uid, err := UserID(r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if c == nil || !c.IsOwnedBy(uid) {
		return primitive.NilObjectID, apierr.Unauthorized("Unauthorized")
	}
	return uid, nil
}
