package payment

import "fmt"

const (
	codeSuccess         = 100
	codeAlreadyVerified = 101
)

// GatewayError is a non-success gateway response. Message is the localized
// text for the code so handlers can pass it straight to the caller.
type GatewayError struct {
	Code    int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
}

func newGatewayError(code int) *GatewayError {
	return &GatewayError{Code: code, Message: MessageFor(code)}
}

// Codes the sweeper treats as "this session is gone": no destructive action
// is taken, the order stays pending for manual follow-up.
var terminalVerifyCodes = map[int]bool{
	-51: true,
	-52: true,
	-53: true,
	-54: true,
	-55: true,
}

// IsTerminalVerifyCode reports whether the code means the gateway no longer
// knows the session (expired, canceled, or never paid).
func IsTerminalVerifyCode(code int) bool {
	return terminalVerifyCodes[code]
}

var gatewayMessages = map[int]string{
	-9:  "خطای اعتبارسنجی: اطلاعات ارسال شده ناقص است",
	-10: "آی‌پی یا مرچنت کد پذیرنده صحیح نیست",
	-11: "مرچنت کد فعال نیست، با پشتیبانی تماس بگیرید",
	-12: "تلاش بیش از حد مجاز در بازه زمانی کوتاه",
	-15: "درگاه پرداخت به حالت تعلیق درآمده است",
	-16: "سطح تایید پذیرنده پایین‌تر از سطح نقره‌ای است",
	-17: "محدودیت پذیرنده در سطح آبی",
	-30: "پذیرنده اجازه دسترسی به سرویس تسویه اشتراکی شناور را ندارد",
	-31: "حساب بانکی تسویه را به پنل اضافه کنید",
	-32: "مبلغ وارد شده از مبلغ کل تراکنش بیشتر است",
	-33: "درصدهای وارد شده صحیح نیست",
	-34: "مبلغ از کل تراکنش بیشتر است",
	-35: "تعداد افراد دریافت‌کننده تسهیم بیش از حد مجاز است",
	-36: "حداقل مبلغ جهت تسهیم باید ده هزار ریال باشد",
	-37: "یک یا چند شماره شبای وارد شده برای تسهیم از سمت بانک فعال نیست",
	-38: "خطا در پردازش شماره شبا، با پشتیبانی تماس بگیرید",
	-39: "خطای بانکی رخ داده است",
	-40: "اجازه دسترسی به متد مربوطه وجود ندارد",
	-41: "اطلاعات ارسال شده غیرمعتبر است",
	-42: "مدت زمان معتبر طول عمر شناسه پرداخت باید بین ۳۰ دقیقه تا ۴۵ روز باشد",
	-50: "مبلغ پرداخت شده با مقدار مبلغ در تایید شده متفاوت است",
	-51: "پرداخت ناموفق",
	-52: "خطای غیرمنتظره، با پشتیبانی تماس بگیرید",
	-53: "پرداخت متعلق به این مرچنت کد نیست",
	-54: "اتوریتی نامعتبر است",
	-55: "تراکنش مورد نظر یافت نشد",
	-60: "امکان ریورس کردن تراکنش با بانک وجود ندارد",
	-61: "تراکنش موفق نیست یا قبلا ریورس شده است",
	-62: "آدرس بازگشت درگاه ثبت نشده است",
	-63: "حداکثر زمان مجاز برای ریورس کردن تراکنش گذشته است",
}

const unknownGatewayMessage = "خطای ناشناخته در درگاه پرداخت"

// MessageFor maps a gateway code to its localized message; unknown codes
// fall back to a generic one.
func MessageFor(code int) string {
	if msg, ok := gatewayMessages[code]; ok {
		return msg
	}
	return unknownGatewayMessage
}
