package game

import (
	"errors"
	"fmt"
)

// Code identifies why a request was rejected
type Code int

// Rejection codes. The numbering is part of the wire format and must stay stable.
const (
	CodeJoinFullRoom Code = iota
	CodeJoinBanned
	CodeNotEnoughPlayers
	CodeColourTaken
	CodeNotAColour
	CodeKickBadState
	CodeKickUnknownUser
	CodeDeckTooSmall
	CodeBeginBadState
	CodeClueBadState
	CodeClueNotTurn
	CodeClueTooLong
	CodeClueTooShort
	CodePlayBadState
	CodePlayNotTurn
	CodePlayUnknownUser
	CodePlayAlready
	CodeVoteBadState
	CodeVoteNotTurn
	CodeVoteUnknownUser
	CodeVoteInvalid
	CodeVoteAlready
	CodeNotHaveCard
	CodeNotAnInteger
	CodeIllegalRange
	CodeUnknownCard
	CodeUnknownGame
	CodeUnknownUser
	CodeBadPassword
	CodeNotHost
)

var codeNames = [...]string{
	CodeJoinFullRoom:     "JOIN_FULL_ROOM",
	CodeJoinBanned:       "JOIN_BANNED",
	CodeNotEnoughPlayers: "NOT_ENOUGH_PLAYERS",
	CodeColourTaken:      "COLOUR_TAKEN",
	CodeNotAColour:       "NOT_A_COLOUR",
	CodeKickBadState:     "KICK_BAD_STATE",
	CodeKickUnknownUser:  "KICK_UNKNOWN_USER",
	CodeDeckTooSmall:     "DECK_TOO_SMALL",
	CodeBeginBadState:    "BEGIN_BAD_STATE",
	CodeClueBadState:     "CLUE_BAD_STATE",
	CodeClueNotTurn:      "CLUE_NOT_TURN",
	CodeClueTooLong:      "CLUE_TOO_LONG",
	CodeClueTooShort:     "CLUE_TOO_SHORT",
	CodePlayBadState:     "PLAY_BAD_STATE",
	CodePlayNotTurn:      "PLAY_NOT_TURN",
	CodePlayUnknownUser:  "PLAY_UNKNOWN_USER",
	CodePlayAlready:      "PLAY_ALREADY",
	CodeVoteBadState:     "VOTE_BAD_STATE",
	CodeVoteNotTurn:      "VOTE_NOT_TURN",
	CodeVoteUnknownUser:  "VOTE_UNKNOWN_USER",
	CodeVoteInvalid:      "VOTE_INVALID",
	CodeVoteAlready:      "VOTE_ALREADY",
	CodeNotHaveCard:      "NOT_HAVE_CARD",
	CodeNotAnInteger:     "NOT_AN_INTEGER",
	CodeIllegalRange:     "ILLEGAL_RANGE",
	CodeUnknownCard:      "UNKNOWN_CARD",
	CodeUnknownGame:      "UNKNOWN_GAME",
	CodeUnknownUser:      "UNKNOWN_USER",
	CodeBadPassword:      "BAD_PASSWORD",
	CodeNotHost:          "NOT_HOST",
}

// String returns the symbolic name of the code
func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is returned for every rejected request. Value optionally carries the
// offending input.
type Error struct {
	Code  Code
	Value any
}

// NewError returns an error with the given code and optional offending value
func NewError(code Code, value any) *Error {
	return &Error{Code: code, Value: value}
}

func (e *Error) Error() string {
	if e.Value == nil {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %q", e.Code, fmt.Sprint(e.Value))
}

// IsCode reports whether err is a *Error with the given code
func IsCode(err error, code Code) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Code == code
}
