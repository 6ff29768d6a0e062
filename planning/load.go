package planning

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wyfcoding/prodplan/xerrors"
)

// LoadProblem 读取 YAML 或 JSON 格式的问题文件并校验.
func LoadProblem(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Validation(xerrors.CodeInvalidProblem, "open problem file: %v", err).
			WithContext("path", path)
	}
	defer f.Close()

	problem, err := DecodeProblem(f)
	if err != nil {
		return nil, err
	}
	if err := Validate(problem); err != nil {
		return nil, err
	}
	return problem, nil
}

// DecodeProblem 从 r 解码问题, 不做业务校验. 未知字段视为错误.
func DecodeProblem(r io.Reader) (*Problem, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var problem Problem
	if err := dec.Decode(&problem); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, xerrors.Validation(xerrors.CodeEmptyProducts, "problem document is empty")
		}
		return nil, xerrors.Validation(xerrors.CodeInvalidProblem, "decode problem: %v", err)
	}
	return &problem, nil
}
