package consts

const (
	Name    = "summa-bench"
	Version = "v0.3.0"
)

// TimeUnit is the unit every recorded phase duration is expressed in.
const TimeUnit = "milliseconds"

const (
	UsernameLen       = 10
	UsernameAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultMinBalance = 1_000
	DefaultMaxBalance = 90_000
)

const (
	DefaultK          = 15
	DefaultLevels     = 17
	DefaultCurrencies = 1
	DefaultBytes      = 8
)

const (
	DefaultAssetName  = "ETH"
	DefaultAssetChain = "ETH"
)
