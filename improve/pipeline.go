// Package improve turns page content and its search metrics into an issue
// analysis and a rewritten article using a revise.Completer.
package improve

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/revise"
)

// SystemPrompt is sent with both stages.
const SystemPrompt = "あなたはSEOと記事改善の専門家です。回答は必ず日本語で行ってください。"

// Ensure Pipeline implements revise.Improver at compile time.
var _ revise.Improver = (*Pipeline)(nil)

// Pipeline implements revise.Improver with one completion per stage.
// Failures are returned as-is; there are no retries.
type Pipeline struct {
	completer revise.Completer
}

// NewPipeline creates a new Pipeline.
func NewPipeline(completer revise.Completer) *Pipeline {
	return &Pipeline{completer: completer}
}

// AnalyzeIssues asks why the page gets few impressions and what to change.
func (p *Pipeline) AnalyzeIssues(ctx context.Context, content string, metrics revise.PageMetrics) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", revise.Errorf(revise.EINVALID, "content required")
	}
	return p.complete(ctx, "analysis", BuildAnalysisPrompt(content, metrics))
}

// Rewrite asks for the full article rewritten to address issues.
func (p *Pipeline) Rewrite(ctx context.Context, content, issues string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", revise.Errorf(revise.EINVALID, "content required")
	}
	if strings.TrimSpace(issues) == "" {
		return "", revise.Errorf(revise.EINVALID, "issues required")
	}
	return p.complete(ctx, "rewrite", BuildRewritePrompt(content, issues))
}

func (p *Pipeline) complete(ctx context.Context, stage, prompt string) (string, error) {
	text, err := p.completer.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", revise.Errorf(revise.EUPSTREAM, "empty %s completion", stage)
	}
	return text, nil
}

// BuildAnalysisPrompt builds the first-stage prompt. The output depends
// only on its inputs.
func BuildAnalysisPrompt(content string, metrics revise.PageMetrics) string {
	var sb strings.Builder
	sb.WriteString("次の記事を分析し、検索結果での表示回数が伸びない理由と改善点を具体的に挙げてください。\n\n")
	fmt.Fprintf(&sb, "【URL】\n%s\n\n", metrics.URL)
	sb.WriteString("【検索パフォーマンス】\n")
	fmt.Fprintf(&sb, "表示回数: %d\n", metrics.Impressions)
	fmt.Fprintf(&sb, "クリック数: %d\n", metrics.Clicks)
	fmt.Fprintf(&sb, "CTR: %g\n", metrics.CTR)
	fmt.Fprintf(&sb, "平均掲載順位: %g\n\n", metrics.Position)
	fmt.Fprintf(&sb, "【記事】\n%s\n\n", content)
	sb.WriteString("【回答してほしいこと】\n")
	sb.WriteString("1. 記事の問題点（構成、内容、キーワード、検索意図との一致など）\n")
	sb.WriteString("2. 表示回数が少ない原因\n")
	sb.WriteString("3. 具体的な改善案\n\n")
	sb.WriteString("箇条書きで簡潔にまとめてください。")
	return sb.String()
}

// BuildRewritePrompt builds the second-stage prompt from the original
// content and the first-stage analysis.
func BuildRewritePrompt(content, issues string) string {
	var sb strings.Builder
	sb.WriteString("次の記事を、分析で見つかった問題点を踏まえて書き直してください。\n\n")
	fmt.Fprintf(&sb, "【元の記事】\n%s\n\n", content)
	fmt.Fprintf(&sb, "【問題点】\n%s\n\n", issues)
	sb.WriteString("【書き直しの条件】\n")
	sb.WriteString("検索エンジンにも読者にも価値のある記事にしてください。\n")
	sb.WriteString("元の記事の良い部分は残し、足りない内容は補ってください。\n")
	sb.WriteString("見出しの構成も見直してください。\n\n")
	sb.WriteString("書き直した記事の全文だけを出力してください。")
	return sb.String()
}
