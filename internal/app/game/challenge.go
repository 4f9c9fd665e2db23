package game

import (
	"chessarena/internal/pkg/logx"
	"chessarena/internal/pkg/randx"
)

// ChallengeRelay delivers directed social events (challenges, friend
// requests) to their target's live connection through the presence registry.
// Delivery is best effort: an offline target means the event is dropped, the
// same way the clients treat an unanswered doorbell.
type ChallengeRelay struct {
	presence *Registry
}

// NewChallengeRelay returns a relay resolving targets via presence.
func NewChallengeRelay(presence *Registry) *ChallengeRelay {
	return &ChallengeRelay{presence: presence}
}

// SendChallenge stamps the challenge with a fresh id and delivers it to the
// target. Returns the delivered payload and whether the target was online.
func (r *ChallengeRelay) SendChallenge(p ChallengePayload) (ReceiveChallengePayload, bool) {
	delivered := ReceiveChallengePayload{
		FromUser:    p.FromUser,
		Amount:      p.Amount,
		RoomCode:    p.RoomCode,
		ChallengeID: randx.ChallengeID(),
	}

	target, ok := r.presence.Lookup(p.ToUserID)
	if !ok {
		logx.Info("Challenge target offline, dropping", "toUserId", p.ToUserID)
		return delivered, false
	}

	if err := target.Send(EventReceiveChallenge, delivered); err != nil {
		logx.Warn("Challenge delivery failed", "toUserId", p.ToUserID, "error", err.Error())
		return delivered, false
	}

	return delivered, true
}

// RejectChallenge tells the original challenger who declined.
func (r *ChallengeRelay) RejectChallenge(p RejectChallengePayload) bool {
	target, ok := r.presence.Lookup(p.TargetUserID)
	if !ok {
		return false
	}

	return target.Send(EventChallengeRejected, ChallengeRejectedPayload{UserName: p.RejectorName}) == nil
}

// SendFriendRequest forwards a friend request to an online target.
func (r *ChallengeRelay) SendFriendRequest(p FriendRequestPayload) bool {
	target, ok := r.presence.Lookup(p.ToUserID)
	if !ok {
		return false
	}

	return target.Send(EventFriendRequestReceived, p) == nil
}

// AcceptFriendRequest notifies the original requester of the acceptance.
func (r *ChallengeRelay) AcceptFriendRequest(p FriendRequestPayload) bool {
	target, ok := r.presence.Lookup(p.ToUserID)
	if !ok {
		return false
	}

	return target.Send(EventFriendRequestAccepted, p) == nil
}
