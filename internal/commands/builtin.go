package commands

import (
	"strconv"

	"github.com/dshills/folio/internal/model"
)

// Builtin returns the named commands for schema. Structural commands
// are always present; commands tied to a node or mark type appear only
// when the schema defines it. Heading commands go up to maxHeading
// (at most 6).
func Builtin(schema *model.Schema, maxHeading int) map[string]Command {
	cmds := map[string]Command{
		"newlineInCode":       NewlineInCode,
		"exitCode":            ExitCode,
		"createParagraphNear": CreateParagraphNear,
		"liftEmptyBlock":      LiftEmptyBlock,
		"splitBlock":          SplitBlock,
		"deleteSelection":     DeleteSelection,
		"joinBackward":        JoinBackward,
		"joinForward":         JoinForward,
		"deleteCharBackward":  DeleteCharBackward,
		"deleteCharForward":   DeleteCharForward,
		"selectAll":           SelectAll,
		"moveLeft":            MoveLeft,
		"moveRight":           MoveRight,
		"moveUp":              MoveUp,
		"moveDown":            MoveDown,
		"moveLineStart":       MoveLineStart,
		"moveLineEnd":         MoveLineEnd,
		"extendLeft":          ExtendLeft,
		"extendRight":         ExtendRight,
		"extendLineStart":     ExtendLineStart,
		"extendLineEnd":       ExtendLineEnd,
		"joinUp":              JoinUp,
		"joinDown":            JoinDown,
		"lift":                Lift,
		"selectParentNode":    SelectParentNode,
		"swallowTab":          SwallowTab,
	}

	marks := map[string]string{
		"toggleStrong":    "strong",
		"toggleEm":        "em",
		"toggleCode":      "code",
		"toggleUnderline": "underline",
		"toggleStrike":    "strike",
	}
	for name, markName := range marks {
		if mt := schema.MarkType(markName); mt != nil {
			cmds[name] = ToggleMark(mt, nil)
		}
	}

	if item := schema.NodeType("list_item"); item != nil {
		cmds["splitListItem"] = SplitListItem(item)
		cmds["liftListItem"] = LiftListItem(item)
		cmds["sinkListItem"] = SinkListItem(item)
		if t := schema.NodeType("bullet_list"); t != nil {
			cmds["wrapBulletList"] = WrapInList(t, nil)
		}
		if t := schema.NodeType("ordered_list"); t != nil {
			cmds["wrapOrderedList"] = WrapInList(t, nil)
		}
	}
	if t := schema.NodeType("blockquote"); t != nil {
		cmds["wrapBlockquote"] = WrapIn(t, nil)
	}
	if t := schema.NodeType("hard_break"); t != nil {
		cmds["hardBreak"] = HardBreak(t)
	}
	if t := schema.NodeType("horizontal_rule"); t != nil {
		cmds["insertHorizontalRule"] = InsertNode(t)
	}
	if t := schema.NodeType("paragraph"); t != nil {
		cmds["setParagraph"] = SetBlockType(t, nil)
	}
	if t := schema.NodeType("code_block"); t != nil {
		cmds["setCodeBlock"] = SetBlockType(t, nil)
	}
	if t := schema.NodeType("heading"); t != nil {
		for level := 1; level <= min(maxHeading, 6); level++ {
			cmds["setHeading"+strconv.Itoa(level)] = SetBlockType(t, model.Attrs{"level": level})
		}
	}
	return cmds
}
