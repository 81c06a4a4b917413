package contracts

// CellChange is one recalculated cell pushed to subscribers.
type CellChange struct {
	Ref    string `json:"ref"`
	Result string `json:"result"`
}

// WebhookDispatcher pushes recalculated cell values to subscribed URLs.
type WebhookDispatcher interface {
	SetWebhookUrl(sheetId string, ref string, webhookUrl string)
	GetWebhookUrl(sheetId string, ref string) string
	Notify(sheetId string, changes []CellChange)
	Start()
	Close()
}
