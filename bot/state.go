package bot

// State adalah posisi user dalam alur pemesanan.
type State string

const (
	StateGeneral               State = "GENERAL"
	StateAwaitingQuantity      State = "AWAITING_QUANTITY"
	StateAwaitingMoreItems     State = "AWAITING_MORE_ITEMS"
	StateAwaitingDiningOption  State = "AWAITING_DINING_OPTION"
	StateAwaitingTakeoutType   State = "AWAITING_TAKEOUT_TYPE"
	StateAwaitingPaymentMethod State = "AWAITING_PAYMENT_METHOD"
)

// States berisi seluruh state yang valid.
var States = []State{
	StateGeneral,
	StateAwaitingQuantity,
	StateAwaitingMoreItems,
	StateAwaitingDiningOption,
	StateAwaitingTakeoutType,
	StateAwaitingPaymentMethod,
}

func (s State) IsAwaiting() bool {
	return s != StateGeneral
}

type DiningOption string

const (
	DiningDineIn   DiningOption = "dine_in"
	DiningTakeaway DiningOption = "takeaway"
)

func (d DiningOption) Label() string {
	switch d {
	case DiningDineIn:
		return "Makan di Tempat"
	case DiningTakeaway:
		return "Dibungkus"
	}
	return "-"
}

type TakeoutType string

const (
	TakeoutPickup   TakeoutType = "pickup"
	TakeoutDelivery TakeoutType = "delivery"
)

type PaymentMethod string

const (
	PaymentEWallet PaymentMethod = "e_wallet"
	PaymentCash    PaymentMethod = "cash"
)

func (p PaymentMethod) Label() string {
	switch p {
	case PaymentEWallet:
		return "E-Wallet"
	case PaymentCash:
		return "Cash"
	}
	return "-"
}
