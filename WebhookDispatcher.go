package main

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"

	json "github.com/bytedance/sonic"

	"lotusCalc/contracts"
)

const WebhookWorkersCount = 5

type SheetWebhooks map[string]string

type WebhookSendCommand struct {
	Webhook string
	Change  contracts.CellChange
}

// WebhookDispatcher pushes recalculated values to subscriber URLs
// through a fixed worker pool; Notify never blocks a recalculation.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	queue    chan WebhookSendCommand
	webhooks map[string]SheetWebhooks
}

func NewWebhookDispatcher() *WebhookDispatcher {
	return &WebhookDispatcher{
		queue:    make(chan WebhookSendCommand, 20),
		webhooks: map[string]SheetWebhooks{},
	}
}

func (manager *WebhookDispatcher) SetWebhookUrl(sheetId string, ref string, webhookUrl string) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if _, ok := manager.webhooks[sheetId]; !ok {
		manager.webhooks[sheetId] = SheetWebhooks{}
	}

	if webhookUrl == "" {
		delete(manager.webhooks[sheetId], ref)
	} else {
		manager.webhooks[sheetId][ref] = webhookUrl
	}
}

func (manager *WebhookDispatcher) GetWebhookUrl(sheetId string, ref string) string {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if webhook, ok := manager.webhooks[sheetId][ref]; ok {
		return webhook
	}
	return ""
}

func (manager *WebhookDispatcher) Notify(sheetId string, changes []contracts.CellChange) {
	manager.mu.RLock()
	subscribed := len(manager.webhooks[sheetId]) > 0
	manager.mu.RUnlock()

	if !subscribed {
		return
	}
	go manager.addToQueue(sheetId, changes)
}

func (manager *WebhookDispatcher) addToQueue(sheetId string, changes []contracts.CellChange) {
	for _, change := range changes {
		webhook := manager.GetWebhookUrl(sheetId, change.Ref)
		if webhook != "" {
			manager.queue <- WebhookSendCommand{
				Webhook: webhook,
				Change:  change,
			}
		}
	}
}

func (manager *WebhookDispatcher) Start() {
	for i := 0; i < WebhookWorkersCount; i++ {
		go manager.runWebhookSenderWorker()
	}
}

func (manager *WebhookDispatcher) Close() {
	close(manager.queue)
}

func (manager *WebhookDispatcher) runWebhookSenderWorker() {
	client := &http.Client{
		Timeout: time.Second * 5,
	}

	var response *http.Response
	var err error

	for command := range manager.queue {
		payload, _ := json.Marshal(command.Change)
		response, err = client.Post(command.Webhook, "application/json", bytes.NewBuffer(payload))

		if err != nil {
			fmt.Printf("Webhook send error: %s\n", err)
		} else if response.StatusCode >= 300 {
			fmt.Printf("Unexpect webhook response HTTP status: %s\n", response.Status)
		}
	}
}
