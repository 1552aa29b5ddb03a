package domain

import "time"

// Transaction is one audited balance movement. Amount is in points for point
// movements and in nanoTON for TON movements, distinguished by Type.
type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	PlayerID  string                 `db:"player_id" json:"player_id"`
	Type      string                 `db:"type" json:"type"`
	Amount    int64                  `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Transaction types written by the ledger service.
const (
	TxTap           = "tap"
	TxDailyLogin    = "daily_login"
	TxMiningClaim   = "mining_claim"
	TxReferralBonus = "referral_bonus"
	TxCodeReward    = "code_reward"
	TxWithdraw      = "withdraw"
)
