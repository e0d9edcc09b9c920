package aws

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// LoadConfig loads the default config and assumes AWS_IAM_ROLE_ARN when it is set.
func LoadConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return aws.Config{}, err
	}
	iamRole := os.Getenv("AWS_IAM_ROLE_ARN")
	if iamRole == "" {
		return cfg, nil
	}
	stsClient := sts.NewFromConfig(cfg)
	output, err := stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(iamRole),
		RoleSessionName: aws.String("mcp-website-api"),
	})
	if err != nil {
		log.Printf("Error configuring STS client: %s\n", err.Error())
		return aws.Config{}, err
	}
	creds := output.Credentials
	return config.LoadDefaultConfig(ctx, config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(*creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken),
	))
}

// TopicArn appends topic to AWS_SNS_TOPIC_PREFIX (arn:aws:sns:<region>:<account>).
func TopicArn(topic string) string {
	prefix := strings.TrimSuffix(os.Getenv("AWS_SNS_TOPIC_PREFIX"), ":")
	return prefix + ":" + topic
}

// Enabled reports whether order events go through SNS/SQS instead of Kafka.
func Enabled() bool {
	return os.Getenv("AWS_SNS_TOPIC_PREFIX") != ""
}
