package cascade

import (
	"context"

	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResolvedEntity is an accepted identifier matched to its stored record.
type ResolvedEntity struct {
	Identifier string
	ID         primitive.ObjectID
	Role       string
	Status     EntityStatus
}

// ResolveResult is the output of Resolve.
type ResolveResult struct {
	Valid   []ResolvedEntity
	Invalid []Rejection
}

// Resolve looks every accepted email up in one batched call and keeps those
// whose role is expectedRole. Output follows the accepted order.
func Resolve(ctx context.Context, users UserLookup, accepted []string, expectedRole string) (ResolveResult, error) {
	var res ResolveResult
	if len(accepted) == 0 {
		return res, nil
	}

	found, err := users.FindByEmails(ctx, accepted)
	if err != nil {
		return res, &StoreError{Phase: PhaseResolve, Category: Users.Name, Err: err}
	}
	byEmail := make(map[string]ResolvedEntity, len(found))
	for _, u := range found {
		byEmail[normalize.Email(u.Email)] = ResolvedEntity{
			Identifier: normalize.Email(u.Email),
			ID:         u.ID,
			Role:       normalize.Role(u.Role),
		}
	}

	want := normalize.Role(expectedRole)
	for _, email := range accepted {
		e, ok := byEmail[email]
		switch {
		case !ok:
			res.Invalid = append(res.Invalid, notFound(email))
		case e.Role != want:
			res.Invalid = append(res.Invalid, wrongRole(email, e.Role))
		default:
			e.Status = StatusValid
			res.Valid = append(res.Valid, e)
		}
	}
	return res, nil
}
