package contract

// TokenSale sells MyToken for ETH at ratio tokens per wei, sells MyNFT
// tokens for price MyToken, buys them back for price/2 and lets the owner
// withdraw the tokens collected from NFT sales (the owner pool).
//
// Function selectors:
//
//	buyTokens()        → 0xd0febe4c
//	returnTokens(u256) → 0x3ae1786f
//	buyNFT(u256)       → 0x51ed8288
//	returnNFT(u256)    → 0xb0cd2aa0
//	withdraw(u256)     → 0x2e1a7d4d
func init() {
	RegisterBuiltin(Builtin{
		Kind:        KindSale,
		Name:        "TokenSale",
		Description: "Sells MyToken for ETH and MyNFT for MyToken.",
		ABI:         mustParseABI(tokenSaleABIJSON),
	})
}

const tokenSaleABIJSON = `[
  {"type":"constructor","inputs":[{"name":"_ratio","type":"uint256"},{"name":"_price","type":"uint256"},{"name":"_token","type":"address"},{"name":"_nft","type":"address"}],"stateMutability":"nonpayable"},
  {"type":"function","name":"buyNFT","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"buyTokens","inputs":[],"outputs":[],"stateMutability":"payable"},
  {"type":"function","name":"nft","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
  {"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
  {"type":"function","name":"ownerPool","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"price","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"publicPool","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"ratio","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"returnNFT","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"returnTokens","inputs":[{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"token","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
  {"type":"function","name":"withdraw","inputs":[{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"error","name":"OwnableUnauthorizedAccount","inputs":[{"name":"account","type":"address"}]}
]`
