package category

import (
	"regexp"

	"github.com/insightdelivered/txn-ingest/internal/models"
)

// Rule maps a merchant or description pattern to a fixed category.
type Rule struct {
	Pattern     *regexp.Regexp
	Category    models.Category
	SubCategory string
}

func rule(pattern string, c models.Category, sub string) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)\b(?:` + pattern + `)\b`), Category: c, SubCategory: sub}
}

// DefaultRules are the built-in keyword rules, tried in order.
// Subscriptions sit before shopping so that "amazon prime" is not read as a
// purchase.
func DefaultRules() []Rule {
	return []Rule{
		rule(`rent|mortgage|house rent|landlord|housing society|maintenance charges`, models.CategoryNeeds, "Rent/Mortgage"),
		rule(`electricity|electric|power bill|water bill|gas bill|bescom|tata power|adani|mseb|piped gas|utility|utilities`, models.CategoryNeeds, "Utilities"),
		rule(`airtel|jio|vodafone|vi prepaid|bsnl|broadband|mobile recharge|recharge|postpaid|prepaid|internet|wifi|act fibernet`, models.CategoryNeeds, "Phone & Internet"),
		rule(`fuel|petrol|diesel|hpcl|bpcl|indian oil|iocl|shell|filling station|cng`, models.CategoryNeeds, "Fuel"),
		rule(`grocery|groceries|supermarket|bigbasket|big basket|blinkit|zepto|dmart|d-mart|instamart|reliance fresh|more retail|kirana|tesco|sainsbury|walmart|costco`, models.CategoryNeeds, "Groceries"),
		rule(`swiggy|zomato|starbucks|uber eats|ubereats|dominos|domino's|mcdonald|mcdonalds|kfc|burger king|subway|restaurant|cafe|coffee|pizza|dining|food|eatery|bakery|bar & grill`, models.CategoryWants, "Dining"),
		rule(`uber|ola|rapido|cab|taxi|metro|bus|irctc|railway|train|parking|toll|fastag|auto rickshaw`, models.CategoryNeeds, "Transport"),
		rule(`hospital|clinic|pharmacy|chemist|apollo|medplus|1mg|pharmeasy|doctor|diagnostic|lab test|dental|medical`, models.CategoryNeeds, "Healthcare"),
		rule(`insurance|lic|premium|policybazaar|hdfc life|icici pru|star health`, models.CategoryNeeds, "Insurance"),
		rule(`school|college|tuition|university|course|udemy|coursera|byjus|exam fee|books`, models.CategoryNeeds, "Education"),
		rule(`emi|loan repayment|loan installment`, models.CategoryNeeds, "Loan EMI"),
		rule(`netflix|spotify|amazon prime|prime video|hotstar|disney|youtube premium|apple music|subscription|icloud|google one`, models.CategoryWants, "Subscriptions"),
		rule(`movie|cinema|pvr|inox|bookmyshow|concert|gaming|steam|playstation|xbox`, models.CategoryWants, "Entertainment"),
		rule(`makemytrip|goibibo|cleartrip|airbnb|oyo|hotel|airline|indigo|air india|vistara|flight|booking\.com|expedia|holiday`, models.CategoryWants, "Travel"),
		rule(`amazon|flipkart|myntra|ajio|meesho|nykaa|shopping|mall|store|mart|retail|ikea|decathlon|croma`, models.CategoryWants, "Shopping"),
		rule(`salon|spa|barber|parlour|parlor|grooming|cosmetics|gym|fitness`, models.CategoryWants, "Personal Care"),
		rule(`gift|gifts|donation|charity`, models.CategoryWants, "Gifts"),
		rule(`sip|mutual fund|mutual funds|mf|amc`, models.CategorySavings, "Mutual Funds"),
		rule(`zerodha|groww|upstox|angel one|stock|stocks|shares|equity|demat`, models.CategorySavings, "Stocks"),
		rule(`fd|fixed deposit|rd|recurring deposit`, models.CategorySavings, "Fixed Deposit"),
		rule(`ppf|nps|epf|pension|retirement`, models.CategorySavings, "Retirement"),
		rule(`investment|invest|invested|gold bond|sgb`, models.CategorySavings, "Investments"),
	}
}
