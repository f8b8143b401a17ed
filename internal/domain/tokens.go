package domain

const logoBase = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/"

// DefaultLogo es el logo de SOL, usado para tokens sin entrada en el registro.
const DefaultLogo = logoBase + "So11111111111111111111111111111111111111112/logo.png"

// Mints de uso frecuente.
const (
	MintSOL  = "So11111111111111111111111111111111111111112"
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

func listed(symbol, mint string, decimals uint8, coingecko string) Token {
	return Token{
		Symbol:      symbol,
		Mint:        mint,
		Decimals:    decimals,
		Logo:        logoBase + mint + "/logo.png",
		CoingeckoID: coingecko,
	}
}

// PopularTokens es el universo conocido de tokens SPL.
var PopularTokens = []Token{
	// Majors
	listed("SOL", MintSOL, 9, "solana"),
	listed("USDC", MintUSDC, 6, "usd-coin"),
	listed("USDT", MintUSDT, 6, "tether"),

	// DeFi
	{Symbol: "JUP", Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Decimals: 6, Logo: "https://static.jup.ag/jup/icon.png", CoingeckoID: "jupiter"},
	listed("RAY", "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", 6, "raydium"),
	listed("ORCA", "orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE", 6, "orca"),
	listed("MNGO", "MangoCzJ36AjZyKwVj3VnYU4GTonjfVEnJmvvWaxLac", 6, "mango"),

	// Memes y altcoins
	listed("BONK", "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", 5, "bonk"),
	listed("WIF", "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm", 6, "wif"),
	listed("MEW", "MEW1gQWJ3nEXg2qgERiKu7FAFj79PHvQVREQUzScBPi", 5, "mew"),
	listed("POPCAT", "7GCihgDB8fe6KNjn2wra1qbRGLALGZCMTtCwpCJL5Nu4", 9, "popcat"),

	// Wrapped
	listed("wBTC", "3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh", 8, "wrapped-bitcoin"),
	listed("wETH", "7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs", 8, "weth"),
	listed("wBNB", "9gP2kCy3wA1ctvYWQk75guqXuHfrEomqydHLtcTCqiLa", 8, "binancecoin"),

	// Gaming / NFT
	listed("DUST", "DUSTawucrTsGU8hcqRdHDCbuYhCPADMLM2VcCb8VnFnQ", 9, "dust-protocol"),
	listed("GMT", "7i5KKsX2weiTkry7jA4ZwSuXGhs5eJBEjY8vVxR4pfRx", 3, "stepn"),

	// Otras stables
	listed("UST", "9vMJfxuKxXBoEa7rM12mYLMwTacLMLDJqHozw96WQL8i", 6, "terrausd"),

	listed("PYTH", "HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt", 6, "pyth-network"),
	listed("HNT", "hntyVP6YFm1Hg25TN9WGLqM12b8TQmcknKrdu1oxRg", 8, "helium"),
	listed("MOBILE", "mb1eu7TzEc71KxIl27spC7GGJZvztLDHQkdUT58ksj", 6, "helium-mobile"),
	listed("IOT", "iotEVVZLEyWo6EhDCJfzMYYcelFf8kUAkn52QOkC6zb", 6, "helium-iot"),
	listed("JTO", "jtojtomepa8beP8AuQc6eXt5FriJwfFMwQx2v2f9mCL", 9, "jito"),
	listed("WEN", "WENWENvqqNya429ubCdR81ZmD69brwQaaBYY6p3LCpk", 5, "wen-4"),
	listed("BOME", "ukHH6c7mMyiWCf1b9pnWe25TSpkDDt3H5pQZgZ74J82", 6, "book-of-meme"),
	listed("GIGA", "63LfDmNb3MQ8mw9MtZ2To9bEA2M71kZUUGq5tiJxcqj9", 5, "gigachad-2"),
	listed("CLOUD", "CLoUDKc4Ane7HeQcPpE3YHnznRxhMimJ4MyaUqyHFzAu", 9, "cloudtx"),
}

// HighPrioritySymbols son los pares más líquidos: el set por defecto de
// tokens de inicio y el set de intermedios de cada ciclo.
var HighPrioritySymbols = []string{
	"SOL", "USDC", "USDT", "JUP", "RAY", "ORCA", "BONK", "WIF", "wBTC", "wETH",
}
