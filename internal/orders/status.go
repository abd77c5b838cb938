package orders

type Status string

const (
	StatusOpen           Status = "OPEN"
	StatusWaitingPayment Status = "WAITING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusFinished       Status = "FINISHED"
	StatusCancelled      Status = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentRejected PaymentStatus = "REJECTED"
	// PaymentRefunded is only ever set by an external refund process.
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var validNext = map[Status]map[Status]bool{
	StatusOpen:           {StatusWaitingPayment: true, StatusCancelled: true},
	StatusWaitingPayment: {StatusPaid: true, StatusCancelled: true},
	StatusPaid:           {StatusFinished: true},
	StatusFinished:       {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

var validPairs = map[Status]map[PaymentStatus]bool{
	StatusOpen:           {PaymentPending: true},
	StatusWaitingPayment: {PaymentPending: true},
	StatusPaid:           {PaymentApproved: true},
	StatusFinished:       {PaymentApproved: true},
	StatusCancelled:      {PaymentRejected: true, PaymentRefunded: true},
}

// ValidPair reports whether status and payment status may be observed together.
func ValidPair(s Status, p PaymentStatus) bool {
	return validPairs[s][p]
}

// Terminal reports whether no further lifecycle operation can change s.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}
