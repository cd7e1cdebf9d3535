package models

import (
	"time"
)

// Message direction values.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Message represents a single WhatsApp message stored in the messages collection.
// It is the only persisted entity: created once at ingest (inbound) or at
// send-confirmation (outbound), never mutated or deleted.
type Message struct {
	MessageID      string    `bson:"messageId" json:"messageId"`
	ConversationID string    `bson:"conversationId" json:"conversationId"`
	From           string    `bson:"from" json:"from"`
	FromName       string    `bson:"fromName" json:"fromName"`
	To             string    `bson:"to" json:"to"`
	Body           string    `bson:"body" json:"body"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
	Direction      string    `bson:"direction" json:"direction"`
	Status         string    `bson:"status" json:"status"`
}

// ConversationSummary is the aggregated per-conversation row returned by the
// conversation listing: the most recent message's body/time/name plus a count
// of incoming messages, grouped by conversationId.
type ConversationSummary struct {
	ConversationID  string    `bson:"_id" json:"conversationId"`
	LastMessageBody string    `bson:"lastMessageBody" json:"lastMessageBody"`
	LastMessageTime time.Time `bson:"lastMessageTime" json:"lastMessageTime"`
	FromName        string    `bson:"fromName" json:"fromName"`
	IncomingCount   int64     `bson:"incomingCount" json:"incomingCount"`
}
