package model

import "time"

// ConversionKind identifies the direction of a recorded conversion.
type ConversionKind string

const (
	KindSpeechToText ConversionKind = "speech-to-text"
	KindTextToSpeech ConversionKind = "text-to-speech"
)

// ConversionRecord is one entry in an account's usage history.
type ConversionRecord struct {
	Kind      ConversionKind `json:"kind"`
	Text      string         `json:"text"`
	Language  string         `json:"language,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// UserStats summarises an account's usage history for display.
type UserStats struct {
	TotalConversions int    `json:"totalConversions"`
	SpeechToText     int    `json:"speechToText"`
	TextToSpeech     int    `json:"textToSpeech"`
	MemberSince      string `json:"memberSince"`
	LastLogin        string `json:"lastLogin"`
}
