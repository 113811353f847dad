package domain

import (
	"context"
	"strings"
)

// OutputMarker fecha o prompt e indica onde o modelo deve começar a escrever.
const OutputMarker = "Output:"

// Model é o modelo externo de geração de texto.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Instruction devolve a instrução de sistema do flavor, com a diretiva de
// idioma quando a persona não fixa o seu próprio idioma.
func Instruction(flavor string, lang Language) string {
	p := Lookup(flavor)
	if p.OwnLanguage {
		return p.Instruction
	}
	return p.Instruction + "\n\n" + lang.Directive()
}

// BuildPrompt monta instrução + entrada literal do usuário + marcador final.
func BuildPrompt(input, flavor string, lang Language) string {
	var b strings.Builder
	b.WriteString(Instruction(flavor, lang))
	b.WriteString("\n\nUser input:\n")
	b.WriteString(input)
	b.WriteString("\n\n")
	b.WriteString(OutputMarker)
	return b.String()
}

// Fallback é o prompt genérico devolvido quando o modelo falha.
// É determinístico e sempre contém a entrada original.
func Fallback(input string, lang Language) string {
	if lang == English {
		return "# Role\n" +
			"You are an experienced expert who gives clear, practical answers.\n\n" +
			"# Task\n" + input + "\n\n" +
			"# Instructions\n" +
			"- Restate the goal in one sentence before answering.\n" +
			"- Work through the problem step by step.\n" +
			"- Point out any assumptions or missing information.\n\n" +
			"# Output format\n" +
			"- Use headings and bullet points.\n" +
			"- Finish with a short summary."
	}
	return "# 役割\n" +
		"あなたは経験豊富な専門家です。わかりやすく実践的に回答してください。\n\n" +
		"# タスク\n" + input + "\n\n" +
		"# 指示\n" +
		"- 回答の前に目的を一文でまとめてください。\n" +
		"- ステップごとに順を追って考えてください。\n" +
		"- 前提条件や不足している情報があれば指摘してください。\n\n" +
		"# 出力形式\n" +
		"- 見出しと箇条書きを使ってください。\n" +
		"- 最後に短いまとめを付けてください。"
}
