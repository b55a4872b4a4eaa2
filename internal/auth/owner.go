package auth

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OwnerKind int

const (
	OwnerUser OwnerKind = iota + 1
	OwnerGuest
)

// CartOwner identifies the cart a request operates on: a registered user or an anonymous guest.
// Build one with UserOwner or GuestOwner; the zero value is not a valid owner.
type CartOwner struct {
	Kind    OwnerKind
	UserID  primitive.ObjectID
	GuestID string
}

func UserOwner(id primitive.ObjectID) CartOwner {
	return CartOwner{Kind: OwnerUser, UserID: id}
}

func GuestOwner(id string) CartOwner {
	return CartOwner{Kind: OwnerGuest, GuestID: id}
}

func (o CartOwner) IsUser() bool  { return o.Kind == OwnerUser }
func (o CartOwner) IsGuest() bool { return o.Kind == OwnerGuest }

func (o CartOwner) String() string {
	switch o.Kind {
	case OwnerUser:
		return "user:" + o.UserID.Hex()
	case OwnerGuest:
		return "guest:" + o.GuestID
	default:
		return fmt.Sprintf("owner(%d)", o.Kind)
	}
}
