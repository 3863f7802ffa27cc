// Package i18n holds the localized assistant copy in a single table keyed by
// message kind and language, with English as the fallback for any gap.
package i18n

import (
	"fmt"

	"warmhome-backend/internal/model"
)

type Key string

const (
	Welcome          Key = "welcome"
	SessionExpired   Key = "session_expired"
	VolunteerOffer   Key = "volunteer_offer"
	VolunteerConnect Key = "volunteer_connect"
	Fallback         Key = "fallback"
	FeedbackPrompt   Key = "feedback_prompt"
	ThankYou         Key = "thank_you"
	AskForDetail     Key = "ask_for_detail"
	OffTopic         Key = "off_topic"
	UrgentWarning    Key = "urgent_warning"
)

// Text returns the copy for key in lang, falling back to English when the
// language (or the specific entry) is missing.
func Text(key Key, lang model.Language) string {
	entry, ok := messages[key]
	if !ok {
		return ""
	}
	if s, ok := entry[lang]; ok {
		return s
	}
	return entry[model.LangEnglish]
}

// VolunteerContextText names the detected role and issue in the system
// message appended when a volunteer is connected.
func VolunteerContextText(lang model.Language, role model.Role, issue model.IssueType) string {
	tmpl, ok := volunteerContext[lang]
	if !ok {
		tmpl = volunteerContext[model.LangEnglish]
	}
	return fmt.Sprintf(tmpl, role, issue)
}

var messages = map[Key]map[model.Language]string{
	Welcome: {
		model.LangEnglish:    "Hello! I'm here to help with legal questions about renting and buying houses. How can I assist you today?",
		model.LangChinese:    "您好！我在这里帮助您解答有关租房和买房的法律问题。今天我可以为您提供什么帮助？",
		model.LangVietnamese: "Xin chào! Tôi ở đây để giúp bạn giải đáp các câu hỏi pháp lý về thuê và mua nhà. Hôm nay tôi có thể hỗ trợ bạn điều gì?",
		model.LangArabic:     "مرحباً! أنا هنا لمساعدتك في الأسئلة القانونية حول استئجار وشراء المنازل. كيف يمكنني مساعدتك اليوم؟",
		model.LangHindi:      "नमस्ते! मैं घर किराए पर लेने और खरीदने के बारे में कानूनी सवालों में आपकी मदद के लिए यहाँ हूँ। आज मैं आपकी कैसे सहायता कर सकता हूँ?",
		model.LangIndonesian: "Halo! Saya di sini untuk membantu pertanyaan hukum tentang menyewa dan membeli rumah. Bagaimana saya bisa membantu Anda hari ini?",
	},
	SessionExpired: {
		model.LangEnglish:    "Your chat session has expired due to 15 minutes of inactivity. Please start a new chat to continue.",
		model.LangChinese:    "您的聊天会话因15分钟无活动而过期。请开始新的聊天以继续。",
		model.LangVietnamese: "Phiên trò chuyện của bạn đã hết hạn do không hoạt động trong 15 phút. Vui lòng bắt đầu cuộc trò chuyện mới để tiếp tục.",
		model.LangArabic:     "انتهت صلاحية جلسة الدردشة بسبب عدم النشاط لمدة 15 دقيقة. يرجى بدء محادثة جديدة للمتابعة.",
		model.LangHindi:      "निष्क्रियता के 15 मिनट के कारण आपका चैट सेशन समाप्त हो गया है। जारी रखने के लिए कृपया नई चैट शुरू करें।",
		model.LangIndonesian: "Sesi obrolan Anda telah berakhir karena tidak aktif selama 15 menit. Silakan mulai obrolan baru untuk melanjutkan.",
	},
	VolunteerOffer: {
		model.LangEnglish:    "Would you like to connect with a legal volunteer who can provide personalized assistance?",
		model.LangChinese:    "您想要联系法律志愿者获得个性化帮助吗？",
		model.LangVietnamese: "Bạn có muốn kết nối với tình nguyện viên pháp lý để được hỗ trợ cá nhân không?",
		model.LangArabic:     "هل تود التواصل مع متطوع قانوني يمكنه تقديم المساعدة الشخصية؟",
		model.LangHindi:      "क्या आप एक कानूनी स्वयंसेवक से जुड़ना चाहेंगे जो व्यक्तिगत सहायता प्रदान कर सकते हैं?",
		model.LangIndonesian: "Apakah Anda ingin terhubung dengan relawan hukum yang dapat memberikan bantuan personal?",
	},
	VolunteerConnect: {
		model.LangEnglish:    "Connecting you with a legal volunteer... Please wait a moment.",
		model.LangChinese:    "正在为您连接法律志愿者...请稍候。",
		model.LangVietnamese: "Đang kết nối bạn với tình nguyện viên pháp lý... Vui lòng đợi một chút.",
		model.LangArabic:     "جاري ربطك بمتطوع قانوني... يرجى الانتظار لحظة.",
		model.LangHindi:      "आपको एक कानूनी स्वयंसेवक से जोड़ा जा रहा है... कृपया एक क्षण प्रतीक्षा करें।",
		model.LangIndonesian: "Menghubungkan Anda dengan relawan hukum... Mohon tunggu sebentar.",
	},
	Fallback: {
		model.LangEnglish:    "I'm having trouble connecting to provide a detailed response right now. For housing legal matters, please try rephrasing your question or consider connecting with one of our legal volunteers for personalized assistance.",
		model.LangChinese:    "我现在无法连接以提供详细回复。对于住房法律事务，请尝试重新表述您的问题，或考虑联系我们的法律志愿者获得个人帮助。",
		model.LangVietnamese: "Tôi đang gặp khó khăn trong việc kết nối để cung cấp phản hồi chi tiết ngay bây giờ. Đối với các vấn đề pháp lý về nhà ở, vui lòng thử diễn đạt lại câu hỏi của bạn hoặc cân nhắc kết nối với một trong những tình nguyện viên pháp lý của chúng tôi.",
		model.LangArabic:     "أواجه صعوبة في الاتصال لتقديم رد مفصل الآن. لشؤون الإسكان القانونية، يرجى المحاولة إعادة صياغة سؤالك أو النظر في التواصل مع أحد متطوعينا القانونيين.",
		model.LangHindi:      "मुझे अभी विस्तृत उत्तर प्रदान करने के लिए कनेक्ट करने में समस्या हो रही है। आवास कानूनी मामलों के लिए, कृपया अपने प्रश्न को दोबारा कहने का प्रयास करें या व्यक्तिगत सहायता के लिए हमारे कानूनी स्वयंसेवकों से जुड़ने पर विचार करें।",
		model.LangIndonesian: "Saya mengalami kesulitan menghubungkan untuk memberikan respons terperinci saat ini. Untuk masalah hukum perumahan, silakan coba mengulang pertanyaan Anda atau pertimbangkan untuk terhubung dengan salah satu relawan hukum kami.",
	},
	FeedbackPrompt: {
		model.LangEnglish:    "Was this answer helpful? Tap 👍 or 👎 to let us know.",
		model.LangChinese:    "这个回答对您有帮助吗？点击 👍 或 👎 告诉我们。",
		model.LangVietnamese: "Câu trả lời này có hữu ích không? Nhấn 👍 hoặc 👎 để cho chúng tôi biết.",
		model.LangArabic:     "هل كانت هذه الإجابة مفيدة؟ اضغط 👍 أو 👎 لإخبارنا.",
		model.LangHindi:      "क्या यह उत्तर सहायक था? हमें बताने के लिए 👍 या 👎 दबाएं।",
		model.LangIndonesian: "Apakah jawaban ini membantu? Ketuk 👍 atau 👎 untuk memberi tahu kami.",
	},
	ThankYou: {
		model.LangEnglish:    "Thank you for your feedback! Feel free to ask another question.",
		model.LangChinese:    "感谢您的反馈！欢迎继续提问。",
		model.LangVietnamese: "Cảm ơn phản hồi của bạn! Bạn có thể tiếp tục đặt câu hỏi.",
		model.LangArabic:     "شكراً لملاحظاتك! لا تتردد في طرح سؤال آخر.",
		model.LangHindi:      "आपकी प्रतिक्रिया के लिए धन्यवाद! बेझिझक एक और प्रश्न पूछें।",
		model.LangIndonesian: "Terima kasih atas masukan Anda! Silakan ajukan pertanyaan lain.",
	},
	AskForDetail: {
		model.LangEnglish:    "Sorry that wasn't helpful. Could you share a few more details about your situation, such as dates, amounts, or what your lease says?",
		model.LangChinese:    "抱歉没有帮到您。能否提供更多细节，例如日期、金额或租约中的条款？",
		model.LangVietnamese: "Xin lỗi vì câu trả lời chưa hữu ích. Bạn có thể chia sẻ thêm chi tiết về tình huống của mình, chẳng hạn ngày tháng, số tiền hoặc nội dung hợp đồng thuê không?",
		model.LangArabic:     "عذراً لأن ذلك لم يكن مفيداً. هل يمكنك مشاركة المزيد من التفاصيل عن وضعك، مثل التواريخ أو المبالغ أو ما ينص عليه عقد الإيجار؟",
		model.LangHindi:      "क्षमा करें कि वह सहायक नहीं था। क्या आप अपनी स्थिति के बारे में कुछ और विवरण साझा कर सकते हैं, जैसे तिथियां, राशियां या आपके पट्टे में क्या लिखा है?",
		model.LangIndonesian: "Maaf jawaban itu kurang membantu. Bisakah Anda berbagi lebih banyak detail tentang situasi Anda, seperti tanggal, jumlah, atau isi perjanjian sewa Anda?",
	},
	OffTopic: {
		model.LangEnglish:    "I'm specialized in housing and property legal matters only. Please ask about tenant rights, landlord issues, buying/selling property, leases, evictions, repairs, deposits, or related housing law topics.",
		model.LangChinese:    "我只专注于住房和房产法律事务。请询问租户权利、房东问题、买卖房产、租约、驱逐、维修、押金或相关住房法律话题。",
		model.LangVietnamese: "Tôi chỉ chuyên về các vấn đề pháp lý nhà ở và bất động sản. Vui lòng hỏi về quyền người thuê, vấn đề chủ nhà, mua/bán bất động sản, hợp đồng thuê, trục xuất, sửa chữa, tiền đặt cọc hoặc các chủ đề luật nhà ở liên quan.",
		model.LangArabic:     "أنا متخصص فقط في الشؤون القانونية للإسكان والعقارات. يرجى السؤال عن حقوق المستأجرين أو قضايا الملاك أو بيع وشراء العقارات أو عقود الإيجار أو الإخلاء أو الإصلاحات أو الودائع.",
		model.LangHindi:      "मैं केवल आवास और संपत्ति कानूनी मामलों में विशेषज्ञ हूं। कृपया किरायेदार अधिकारों, मकान मालिक मुद्दों, संपत्ति खरीदने/बेचने, पट्टों, बेदखली, मरम्मत, जमा या संबंधित आवास कानून विषयों के बारे में पूछें।",
		model.LangIndonesian: "Saya hanya mengkhususkan diri dalam masalah hukum perumahan dan properti. Silakan tanyakan tentang hak penyewa, masalah pemilik, jual/beli properti, sewa, penggusuran, perbaikan, deposit, atau topik hukum perumahan terkait.",
	},
	UrgentWarning: {
		model.LangEnglish:    "⚠️ This may need urgent attention. If you are unsafe or facing immediate eviction, contact your local housing authority or emergency services right away.",
		model.LangChinese:    "⚠️ 此事可能需要紧急处理。如果您处于危险中或面临立即驱逐，请立刻联系当地住房管理部门或紧急服务。",
		model.LangVietnamese: "⚠️ Vấn đề này có thể cần xử lý khẩn cấp. Nếu bạn không an toàn hoặc sắp bị trục xuất ngay, hãy liên hệ cơ quan nhà ở địa phương hoặc dịch vụ khẩn cấp ngay lập tức.",
		model.LangArabic:     "⚠️ قد يتطلب هذا اهتماماً عاجلاً. إذا كنت في خطر أو تواجه إخلاءً فورياً، فاتصل بهيئة الإسكان المحلية أو خدمات الطوارئ على الفور.",
		model.LangHindi:      "⚠️ इस पर तत्काल ध्यान देने की आवश्यकता हो सकती है। यदि आप असुरक्षित हैं या तत्काल बेदखली का सामना कर रहे हैं, तो तुरंत अपने स्थानीय आवास प्राधिकरण या आपातकालीन सेवाओं से संपर्क करें।",
		model.LangIndonesian: "⚠️ Ini mungkin memerlukan perhatian segera. Jika Anda tidak aman atau menghadapi penggusuran segera, segera hubungi otoritas perumahan setempat atau layanan darurat.",
	},
}

var volunteerContext = map[model.Language]string{
	model.LangEnglish:    "Connecting you with a legal volunteer... Detected context (role: %s, issue: %s). Please wait a moment.",
	model.LangChinese:    "正在为您连接法律志愿者...已识别情况（角色：%s，问题：%s）。请稍候。",
	model.LangVietnamese: "Đang kết nối bạn với tình nguyện viên pháp lý... Bối cảnh đã phát hiện (vai trò: %s, vấn đề: %s). Vui lòng đợi một chút.",
	model.LangArabic:     "جاري ربطك بمتطوع قانوني... السياق المكتشف (الدور: %s، المشكلة: %s). يرجى الانتظار لحظة.",
	model.LangHindi:      "आपको एक कानूनी स्वयंसेवक से जोड़ा जा रहा है... पहचाना गया संदर्भ (भूमिका: %s, मुद्दा: %s)। कृपया प्रतीक्षा करें।",
	model.LangIndonesian: "Menghubungkan Anda dengan relawan hukum... Konteks terdeteksi (peran: %s, masalah: %s). Mohon tunggu sebentar.",
}
