// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

// builtin is the fixed prompt catalogue. Bracketed text marks the parts the
// user fills in.
var builtin = []Category{
	{
		Name: "نموذج استشارة عقد عمل",
		Prompts: []string{
			" أنا موظف في شركة ، وتم حجب مستحقاتي المالية بحجة [السبب المُدَّعى، مثال: مخالفة لسياسة الشركة]. العقد ينص على [ذكر البند المُتعلق بالمرتبات/المستحقات]، ولكنني أشك في مشروعية هذا الإجراء. ما هي الإجراءات القانونية الفعَّالة لاسترداد حقوقي دون انتهاك بنود العقد؟",
		},
	},
	{
		Name: "نموذج انتهاك حقوق الموظف",
		Prompts: []string{
			"تتعرض للإجبار على العمل لساعات إضافية دون مقابل في شركة [اسم الشركة]، بينما ينص قانون العمل على [المادة/البند]. كيف يمكنني إثبات هذه الانتهاكات وإبلاغ الجهات المختصة بشكل قانوني؟",
		},
	},
	{
		Name: "نموذج عيوب في عقار مُشتَرى",
		Prompts: []string{
			"بعد شراء عقار في [الموقع]، اكتشفت وجود عيوب إنشائية [مثل: تشققات] لم يتم الإفصاح عنها وقت التعاقد. العقد يشير إلى [ذكر البند المتعلق بالضمان]. كيف أستطيع إلزام البائع أو المقاول بالإصلاحات وفق القانون؟",
		},
	},
	{
		Name: "نموذج توقيف للتحقيق دون سبب واضح",
		Prompts: []string{
			"أوقفتني الشرطة للتحقيق في [الموقع] دون إبداء أسباب قانونية واضحة، ورفضت إظهار هوية الضابط أو مذكرة التوقيف. ما هي الإجراءات التي يجب اتباعها لحماية حقوقي خلال التوقيف؟ وما المواد القانونية التي تُلزم الشرطة بتوضيح سبب التوقيف (مثال: المادة ٣٦ من نظام الإجراءات الجزائية)؟",
		},
	},
	{
		Name: "نموذج استيلاء على ميراث",
		Prompts: []string{
			"أفراد من عائلتي استولوا على ممتلكات عقارية مملوكة لي وفقاً لوثيقة الميراث [ذكر التفاصيل]. ما هي المستندات المطلوبة (مثال: صك ملكية، شهادة الورثة) لتقديم دعوى استرداد؟",
		},
	},
}

// BuiltinCategories returns a copy of the built-in catalogue.
func BuiltinCategories() []Category {
	out := make([]Category, len(builtin))
	for i, c := range builtin {
		out[i] = Category{Name: c.Name, Prompts: append([]string{}, c.Prompts...)}
	}
	return out
}
