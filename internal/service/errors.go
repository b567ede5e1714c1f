package service

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; returned errors may wrap a
// kind with extra context such as the current lowest price.
var (
	ErrInvalidPrice            = errors.New("bid price must be a positive amount up to 9999999999.99 with at most 2 decimal places")
	ErrNotFound                = errors.New("not found")
	ErrAuctionNotAcceptingBids = errors.New("auction is not currently accepting bids")
	ErrSupplierNotVerified     = errors.New("supplier must be verified to place bids")
	ErrDecrementTooSmall       = errors.New("bid decrement too small")
	ErrBidNotLower             = errors.New("bid must be lower than the current lowest bid")
	ErrAuctionStillActive      = errors.New("auction is still active; cannot award yet")
)

var (
	ErrOrderNotFound    = fmt.Errorf("pooled order %w", ErrNotFound)
	ErrSupplierNotFound = fmt.Errorf("supplier %w", ErrNotFound)
	ErrBidNotFound      = fmt.Errorf("bid %w", ErrNotFound)

	ErrUserHasNoAccessToBid = errors.New("bid belongs to another supplier")
	ErrCannotCancelBid      = fmt.Errorf("cannot cancel bid: %w", ErrAuctionNotAcceptingBids)
	ErrInvalidTransition    = errors.New("order status transition is not allowed")
	ErrInvalidDecrement     = errors.New("minimum bid decrement can't be negative")
)
