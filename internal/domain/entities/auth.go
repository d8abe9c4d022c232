package entities

// LoginInput carries a login or resend request for either channel.
type LoginInput struct {
	AppID        string
	Identifier   string
	SessionToken string
}

type VerifyInput struct {
	AppID        string
	Identifier   string
	OTP          string
	SessionToken string
}

// LoginResult is returned by login and resend.
type LoginResult struct {
	Message       string `json:"message"`
	WalletExists  bool   `json:"walletExists"`
	IsActive      bool   `json:"isActive"`
	AlreadyLogged bool   `json:"-"`
}

// VerifiedWallet is the wallet identity returned after verification.
type VerifiedWallet struct {
	WalletAddress string     `json:"walletAddress"`
	SocialType    SocialType `json:"socialType"`
	UserData      string     `json:"userData"`
}

type VerifyResult struct {
	Message  string          `json:"message"`
	Data     *VerifiedWallet `json:"data,omitempty"`
	IsActive bool            `json:"isActive"`
	Token    string          `json:"token"`
}

// MessageVerification reports the signer recovered from an EIP-191 signature.
// IsValid is false when the signature cannot be recovered or the signer differs
// from the expected address.
type MessageVerification struct {
	IsValid          bool   `json:"isValid"`
	RecoveredAddress string `json:"recoveredAddress,omitempty"`
}

// SignedMessage is the result of an EIP-191 personal signature.
type SignedMessage struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}
