package shared

import "errors"

// Domain-specific errors
var (
	// Auction lifecycle errors
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrNotActive         = errors.New("auction is not accepting bids")
	ErrAlreadyClosed     = errors.New("auction already closed")
	ErrInvalidTransition = errors.New("illegal auction status transition")
	ErrInvalidStartTime  = errors.New("start time cannot be in the past")
	ErrInvalidEndTime    = errors.New("end time must be after start time")
	ErrInvalidStartPrice = errors.New("starting price must be greater than 0")
	ErrItemAlreadyListed = errors.New("item is already in an active auction")
	ErrAuctionCompleted  = errors.New("auction already completed")

	// Bid validation errors
	ErrBidTooLow       = errors.New("bid amount below required minimum")
	ErrBudgetExceeded  = errors.New("bid amount exceeds the auction budget")
	ErrNotDescending   = errors.New("bid must undercut the bidder's standing bid")
	ErrSelfBid         = errors.New("owner cannot bid on their own auction")
	ErrInvalidAmount   = errors.New("bid amount must be greater than 0")
	ErrSealedBidExists = errors.New("sealed bid already submitted for this auction")
	ErrNoBidsFound     = errors.New("no bids found")

	// Eligibility errors
	ErrInsufficientVerification = errors.New("verification tier below auction requirement")
	ErrDepositRequired          = errors.New("deposit must be paid before bidding")

	// Trust errors. Deliberately generic: heuristic detail stays with moderators.
	ErrFraudBlocked = errors.New("bid rejected")

	// Deposit errors
	ErrDepositNotFound          = errors.New("deposit not found")
	ErrDepositInvalidTransition = errors.New("illegal deposit status transition")

	// Moderation errors
	ErrAlertNotFound          = errors.New("fraud alert not found")
	ErrAlertInvalidTransition = errors.New("illegal alert status transition")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Item errors
	ErrItemNotFound = errors.New("item not found")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")

	// Validation errors
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidRequest    = errors.New("invalid request")

	// WebSocket message validation errors
	ErrMessageTypeRequired = errors.New("message type is required")
	ErrAuctionIDRequired   = errors.New("auction_id is required")
	ErrUserIDRequired      = errors.New("user_id is required")
	ErrAlertIDRequired     = errors.New("alert_id is required")
	ErrItemIDRequired      = errors.New("item_id is required")
	ErrStartTimeRequired   = errors.New("start_time is required")
	ErrEndTimeRequired     = errors.New("end_time is required")
	ErrStartPriceRequired  = errors.New("starting_price is required")
	ErrUnknownMessageType  = errors.New("unknown message type")

	// Broadcasting errors
	ErrBroadcastFailed            = errors.New("broadcast failed")
	ErrUserNotSubscribed          = errors.New("user not subscribed to auction")
	ErrClientEventChannelNotFound = errors.New("client event channel not found")
)
