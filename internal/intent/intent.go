package intent

import "strings"

// Intent labels returned by Classify.
const (
	CheckBalance  = "check_balance"
	TransferMoney = "transfer_money"
	PayBill       = "pay_bill"
	MiniStatement = "mini_statement"
	ChangePIN     = "change_pin"
	Help          = "help"
	Unknown       = "unknown"
)

// Result is the classification outcome. Entities is always present in the
// shape but never populated: amount and recipient extraction is not
// implemented.
type Result struct {
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
}

type rule struct {
	intent   string
	keywords []string
}

// Rules are checked in order; the first keyword hit wins.
var rules = []rule{
	{CheckBalance, []string{"balance", "check balance", "how much", "account balance"}},
	{TransferMoney, []string{"transfer", "send money", "send", "pay someone"}},
	{PayBill, []string{"pay bill", "bill payment", "utility", "electricity", "water"}},
	{MiniStatement, []string{"statement", "transactions", "history", "recent"}},
	{ChangePIN, []string{"change pin", "update pin", "new pin"}},
	{Help, []string{"help", "what can you do", "commands"}},
}

// Classify maps free-form text to one of the fixed banking intents by
// keyword matching.
func Classify(text string) Result {
	text = strings.ToLower(text)

	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(text, keyword) {
				return Result{Intent: r.intent, Confidence: 0.9, Entities: map[string]string{}}
			}
		}
	}

	return Result{Intent: Unknown, Confidence: 0.5, Entities: map[string]string{}}
}
