package protocol

import (
	"encoding/json"
	"errors"
)

// ErrInvalidPayload reports an envelope payload that does not match the
// shape expected for its event type.
var ErrInvalidPayload = errors.New("invalid payload")

// Envelope payloads arrive as generic JSON values; decoding goes through a
// marshal/unmarshal round trip into the typed request struct.
func roundTrip(payload interface{}, out interface{}) error {
	if payload == nil {
		return ErrInvalidPayload
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return ErrInvalidPayload
	}
	return nil
}

// DecodeString extracts a bare string payload, as used by user_join.
func DecodeString(payload interface{}) (string, error) {
	s, ok := payload.(string)
	if !ok {
		return "", ErrInvalidPayload
	}
	return s, nil
}

// DecodeBool extracts a bare boolean payload, as used by typing.
func DecodeBool(payload interface{}) (bool, error) {
	b, ok := payload.(bool)
	if !ok {
		return false, ErrInvalidPayload
	}
	return b, nil
}

func DecodeSendMessage(payload interface{}) (SendMessageRequest, error) {
	var req SendMessageRequest
	err := roundTrip(payload, &req)
	return req, err
}

func DecodePrivateMessage(payload interface{}) (PrivateMessageRequest, error) {
	var req PrivateMessageRequest
	err := roundTrip(payload, &req)
	return req, err
}

func DecodeReact(payload interface{}) (ReactRequest, error) {
	var req ReactRequest
	err := roundTrip(payload, &req)
	return req, err
}

func DecodeRead(payload interface{}) (ReadRequest, error) {
	var req ReadRequest
	err := roundTrip(payload, &req)
	return req, err
}

func DecodeFileMessage(payload interface{}) (FileMessageRequest, error) {
	var req FileMessageRequest
	err := roundTrip(payload, &req)
	return req, err
}

func DecodeMessage(payload interface{}) (Message, error) {
	var msg Message
	err := roundTrip(payload, &msg)
	return msg, err
}

func DecodeAck(payload interface{}) (AckPayload, error) {
	var ack AckPayload
	err := roundTrip(payload, &ack)
	return ack, err
}

func DecodeUserList(payload interface{}) ([]UserProfile, error) {
	var users []UserProfile
	err := roundTrip(payload, &users)
	return users, err
}

func DecodeStringList(payload interface{}) ([]string, error) {
	var values []string
	err := roundTrip(payload, &values)
	return values, err
}

func DecodeUserProfile(payload interface{}) (UserProfile, error) {
	var profile UserProfile
	err := roundTrip(payload, &profile)
	return profile, err
}

func DecodeReactionUpdate(payload interface{}) (ReactionUpdate, error) {
	var update ReactionUpdate
	err := roundTrip(payload, &update)
	return update, err
}

func DecodeReadUpdate(payload interface{}) (ReadUpdate, error) {
	var update ReadUpdate
	err := roundTrip(payload, &update)
	return update, err
}
