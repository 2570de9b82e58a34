package dto

type ComposeAlertRequest struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"bodyHtml"`
}

type BroadcastResult struct {
	AlertID    string `json:"alertId"`
	Recipients int    `json:"recipients"`
	Delivered  int    `json:"delivered"`
	Failed     int    `json:"failed"`
}

// SubscriptionEvent is the narrow contract the billing webhook delivers:
// an opaque provider reference, the owning user, and the new status string.
type SubscriptionEvent struct {
	ProviderRef string `json:"providerRef"`
	UserID      string `json:"userId"`
	Status      string `json:"status"`
}
