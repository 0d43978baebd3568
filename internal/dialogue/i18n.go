// ABOUTME: Localized string tables for user-facing bot messages.
// ABOUTME: Ten supported languages with English fallback for unknown tags.

package dialogue

// Message keys for the localized tables.
type messageKey int

const (
	msgChooseLanguage messageKey = iota
	msgAskQuestion
	msgAnswerFailed
	msgEscalationOffer
	msgSupportPrompt
	msgSupportForwarded
	msgSupportNotConfigured
)

var messages = map[messageKey]map[string]string{
	msgChooseLanguage: {
		"en": "Please choose your language:",
		"es": "Por favor, elige tu idioma:",
		"pt": "Por favor, escolha seu idioma:",
		"fr": "Veuillez choisir votre langue :",
		"de": "Bitte wähle deine Sprache:",
		"zh": "请选择您的语言：",
		"ja": "言語を選択してください：",
		"ko": "언어를 선택해 주세요:",
		"ru": "Пожалуйста, выберите язык:",
		"ar": "يرجى اختيار لغتك:",
	},
	msgAskQuestion: {
		"en": "Great! Now send your question.",
		"es": "¡Genial! Ahora envía tu pregunta.",
		"pt": "Ótimo! Agora envie sua pergunta.",
		"fr": "Super! Maintenant envoyer votre question.",
		"de": "Großartig! Jetzt sende deine Frage.",
		"zh": "太棒了! 现在请发送您的问题.",
		"ja": "すばらしい！これで、質問を送信できます。",
		"ko": "멋지다! 이제 질문을 보낼 수 있습니다.",
		"ru": "Отлично! Напишите ваш вопрос.",
		"ar": "جيد! الآن أرسل سؤالك.",
	},
	msgAnswerFailed: {
		"en": "Sorry, I couldn't generate an answer right now. Please try again or rephrase your question.",
		"es": "Lo siento, no puedo generar una respuesta en este momento. Por favor, inténtalo de nuevo o reformula tu pregunta.",
		"pt": "Desculpe, eu não posso gerar uma resposta no momento. Por favor, tente novamente ou reformule sua pergunta.",
		"fr": "Désolé, je ne peux pas générer de réponse pour le moment. Veuillez réessayer ou reformuler votre question.",
		"de": "Es tut uns leid, ich kann keine Antwort generieren. Bitte versuchen Sie es erneut oder reformulieren Sie Ihre Frage.",
		"zh": "对不起，我暂时无法生成回答。请尝试重新提问或重新表述您的问题。",
		"ja": "ごめんなさい。今のところ回答を生成できません。再度試してください。",
		"ko": "죄송합니다, 저는 지금 답변을 생성할 수 없습니다. 다시 시도하거나 질문을 다시 말씀해 주세요.",
		"ru": "Извините, не удалось сгенерировать ответ. Попробуйте еще раз или переформулируйте вопрос.",
		"ar": "عذرًا، لم يمكنني إنشاء إجابة في الوقت الحالي. يرجى المحاولة مرة أخرى أو إعادة صياغة السؤال.",
	},
	msgEscalationOffer: {
		"en": "Still have questions? You can contact our support team.",
		"es": "¿Todavía tienes preguntas? Puedes contactar a nuestro equipo de soporte.",
		"pt": "Ainda tem dúvidas? Você pode entrar em contato com nossa equipe de suporte.",
		"fr": "Vous avez encore des questions ? Vous pouvez contacter notre équipe d'assistance.",
		"de": "Noch Fragen? Du kannst unser Support-Team kontaktieren.",
		"zh": "还有问题吗？您可以联系我们的客服团队。",
		"ja": "まだ質問がありますか？サポートチームにお問い合わせいただけます。",
		"ko": "아직 궁금한 점이 있으신가요? 지원팀에 문의하실 수 있습니다.",
		"ru": "Остались вопросы? Вы можете связаться с нашей службой поддержки.",
		"ar": "هل لا تزال لديك أسئلة؟ يمكنك التواصل مع فريق الدعم لدينا.",
	},
	msgSupportPrompt: {
		"en": "Please write your question for the support team now.",
		"es": "Por favor, escribe ahora tu pregunta para el equipo de soporte.",
		"pt": "Por favor, escreva agora sua pergunta para a equipe de suporte.",
		"fr": "Veuillez écrire maintenant votre question pour l'équipe d'assistance.",
		"de": "Bitte schreibe jetzt deine Frage an das Support-Team.",
		"zh": "请现在写下您要咨询客服的问题。",
		"ja": "サポートチームへの質問を今すぐ書いてください。",
		"ko": "지금 지원팀에 보낼 질문을 작성해 주세요.",
		"ru": "Напишите сейчас ваш вопрос для службы поддержки.",
		"ar": "يرجى كتابة سؤالك لفريق الدعم الآن.",
	},
	msgSupportForwarded: {
		"en": "Your question has been forwarded to our support team. They will reply here.",
		"es": "Tu pregunta ha sido enviada a nuestro equipo de soporte. Te responderán aquí.",
		"pt": "Sua pergunta foi encaminhada para nossa equipe de suporte. Eles responderão aqui.",
		"fr": "Votre question a été transmise à notre équipe d'assistance. Ils répondront ici.",
		"de": "Deine Frage wurde an unser Support-Team weitergeleitet. Die Antwort kommt hier an.",
		"zh": "您的问题已转发给我们的客服团队。他们将在此回复。",
		"ja": "ご質問はサポートチームに転送されました。こちらに返信があります。",
		"ko": "질문이 지원팀에 전달되었습니다. 여기로 답변을 드리겠습니다.",
		"ru": "Ваш вопрос передан в службу поддержки. Ответ придёт сюда.",
		"ar": "تم إرسال سؤالك إلى فريق الدعم. سيتم الرد عليك هنا.",
	},
	msgSupportNotConfigured: {
		"en": "Sorry, human support is not available right now. Please try again later.",
		"es": "Lo sentimos, el soporte humano no está disponible en este momento. Inténtalo más tarde.",
		"pt": "Desculpe, o suporte humano não está disponível no momento. Tente novamente mais tarde.",
		"fr": "Désolé, l'assistance humaine n'est pas disponible pour le moment. Veuillez réessayer plus tard.",
		"de": "Leider ist der persönliche Support gerade nicht verfügbar. Bitte versuche es später erneut.",
		"zh": "抱歉，人工客服暂时不可用。请稍后再试。",
		"ja": "申し訳ありませんが、現在サポート担当者が対応できません。後でもう一度お試しください。",
		"ko": "죄송합니다, 현재 상담원 지원을 이용할 수 없습니다. 나중에 다시 시도해 주세요.",
		"ru": "К сожалению, поддержка сейчас недоступна. Попробуйте позже.",
		"ar": "عذرًا، الدعم البشري غير متاح حاليًا. يرجى المحاولة لاحقًا.",
	},
}

// localize returns the message for the language, falling back to English
// for unknown tags.
func localize(key messageKey, languageCode string) string {
	table := messages[key]
	if text, ok := table[languageCode]; ok {
		return text
	}
	return table["en"]
}
