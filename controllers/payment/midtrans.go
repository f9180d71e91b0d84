package paymentController

import (
	"lms/config"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var snapClient snap.Client

// InitMidtrans configures the Snap client from config. Called once at startup.
func InitMidtrans() {
	snapClient.New(config.AppConfig.MidtransServerKey, midtrans.Sandbox)
	config.Log.Infow("Midtrans snap client initialised")
}

// GenerateSnapToken creates a Snap transaction and returns its token and
// redirect URL
func GenerateSnapToken(orderID string, amount int64, name string, email string) (string, string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: name,
			Email: email,
		},
	}

	resp, err := snapClient.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}
